// Package logger provides a thin factory around Go's slog package plus helper
// attribute constructors used across the SafeCheck core.
//
// A single factory, New, creates a *slog.Logger configured by a set of
// Option functions (output format, minimum level, output writer, default
// attributes). Helper constructors such as Error, CheckInID, and Channel live
// in attr.go and keep attribute naming consistent across packages, so a
// check-in id is always logged under "check_in_id" no matter which component
// emits the record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithProduction("safecheck-core"),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "check-in responded",
//	    logger.CheckInID(id),
//	    logger.ContactID(contactID),
//	)
package logger
