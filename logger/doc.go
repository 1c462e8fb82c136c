// Package logger wraps zerolog with the field conventions used by dataflow
// tasks. Loggers are passed explicitly into the executor and channels;
// SetGlobal only points zerolog's package logger at the task output.
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "json"}, "dataflow")
//	log.WithComponent("executor").Info("classified", logger.Fields("topology", "direct"))
package logger
