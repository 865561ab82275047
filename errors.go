package book2pdf

import "errors"

// Sentinel errors for build operations.
var (
	ErrEmptyBook      = errors.New("book content cannot be empty")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrArtifactWrite  = errors.New("failed to write build artifact")
)
