package models

import "errors"

// Sentinel errors shared across repositories and services.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnknownMetricType = errors.New("unknown metric type")
	ErrUnknownOperator   = errors.New("unknown comparison operator")
)
