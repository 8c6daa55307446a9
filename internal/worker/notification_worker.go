package worker

// HandlerRegistrar subscribes event handlers on a dispatcher.
type HandlerRegistrar interface {
	RegisterHandlers()
}

// StartNotificationWorker registers notification and forwarding handlers.
func StartNotificationWorker(registrars ...HandlerRegistrar) {
	for _, registrar := range registrars {
		if registrar == nil {
			continue
		}
		registrar.RegisterHandlers()
	}
}
