package worker

// HandlerRegistrar subscribes its event handlers to the dispatcher.
type HandlerRegistrar interface {
	RegisterHandlers()
}

// StartAuditWorker registers the audit log handlers.
func StartAuditWorker(audit HandlerRegistrar) {
	if audit == nil {
		return
	}
	audit.RegisterHandlers()
}
