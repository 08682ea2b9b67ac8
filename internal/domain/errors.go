package domain

import "errors"

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrOutletNotFound   = errors.New("outlet not found")
	ErrInvalidArticle   = errors.New("invalid article")
	ErrDuplicateArticle = errors.New("article with this url already exists")
)
