package service

import "log/slog"

func logger(component string) *slog.Logger {
	return slog.Default().With(
		slog.String("layer", "service"),
		slog.String("service", component),
	)
}
