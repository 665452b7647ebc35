package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrDocumentNotFound        = errors.New("document not found")
	ErrStateNotFound           = errors.New("sfdr state not found")
	ErrDocumentAlreadyExists   = errors.New("document already exists")
	ErrStateAlreadyExists      = errors.New("sfdr state already exists")
	ErrUnsupportedDocumentType = errors.New("unsupported document type")
	ErrConfidenceOutOfRange    = errors.New("confidence must be between 0.0 and 1.0")
	ErrRatioOutOfRange         = errors.New("coverage ratio must be between 0.0 and 1.0")
	ErrInvalidPageNumber       = errors.New("citation page number must be >= 1")
	ErrInvalidArticle          = errors.New("article must be 6, 8, or 9")
)
