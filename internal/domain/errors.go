package domain

import "errors"

var (
	ErrNoBillText         = errors.New("no bill text provided")
	ErrNotConfigured      = errors.New("completion service not configured")
	ErrExtractionFailed   = errors.New("bill extraction failed")
	ErrDetectionFailed    = errors.New("issue detection failed")
	ErrPricingUnavailable = errors.New("reference pricing unavailable")
)
