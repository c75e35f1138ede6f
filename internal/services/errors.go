package services

import "errors"

// Domain errors of the interview lifecycle. Handlers map these onto the HTTP
// taxonomy: duplicate create and missing interview/question on chunk or
// submit paths are 400, missing on the answer path is 404, a second
// transcription is 409, everything else is 500.
var (
	ErrInterviewExists   = errors.New("interview already exists for this user and job")
	ErrInterviewNotFound = errors.New("interview not found")
	ErrQuestionNotFound  = errors.New("question doesn't exist in the interview")
	ErrAnswerExists      = errors.New("answer already exists")
	ErrJobNotFound       = errors.New("job not found")
)
