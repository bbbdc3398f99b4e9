// Package logger builds *slog.Logger instances with functional options and
// injects request-scoped attributes (request id, tenant id, subdomain) from
// context.Context on every record.
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "tenantd"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//
//	log.InfoContext(ctx, "tenant resolved", logger.Subdomain("acme"))
//
// Attribute helpers in attr.go keep key names consistent across packages.
package logger
