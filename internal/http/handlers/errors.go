package handlers

import "errors"

var (
	errFileTooLarge = errors.New("file exceeds the upload limit")
	errNoPages      = errors.New("no page images uploaded")
)
