// Package services implements the driving port interfaces.
// Services contain the core business logic: upload validation, the
// ingestion state machine, and the retrieval pipeline. They orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO or external dependencies.
package services
