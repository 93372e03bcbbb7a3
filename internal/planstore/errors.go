package planstore

import "errors"

var (
	// ErrPersistence is wrapped by every Save and Load failure.
	ErrPersistence = errors.New("plan persistence failed")

	// ErrPlanNotFound indicates the plan file does not exist.
	ErrPlanNotFound = errors.New("plan file not found")

	// ErrMalformedPlan indicates the file could not be decoded as a plan.
	ErrMalformedPlan = errors.New("malformed plan file")

	// ErrUnknownExtension indicates the file extension maps to no format.
	ErrUnknownExtension = errors.New("unrecognized plan file extension")

	// ErrPermission indicates the file could not be read or written due to permissions.
	ErrPermission = errors.New("permission denied")

	// ErrUnknownFormat indicates a format name other than yaml or json.
	ErrUnknownFormat = errors.New("unrecognized format, use 'yaml' or 'json'")
)
