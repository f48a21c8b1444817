package dashboard

import "errors"

var (
	// ErrUnknownWidget reports an action against a widget id that is not in
	// the catalogue.
	ErrUnknownWidget = errors.New("dashboard: unknown widget")
	// ErrModeMismatch reports a year toggle outside month-over-month mode.
	ErrModeMismatch = errors.New("dashboard: year selection requires month-over-month mode")
	// ErrModeUnavailable reports a mode the widget's domain has no data for.
	ErrModeUnavailable = errors.New("dashboard: mode unavailable")
	// ErrYearUnavailable reports a year with no month-over-month data.
	ErrYearUnavailable = errors.New("dashboard: year unavailable")
	// ErrUnknownVariant reports a variant the widget does not offer.
	ErrUnknownVariant = errors.New("dashboard: unknown variant")
	// ErrUnknownSeries reports a legend item that is not drawn by the widget.
	ErrUnknownSeries = errors.New("dashboard: unknown series")
	// ErrUnknownSection reports a section name outside the navigation.
	ErrUnknownSection = errors.New("dashboard: unknown section")
)
