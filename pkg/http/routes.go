package http

const (
	Webhook = "Webhook"
	Health  = "Health"
	Routes  = "Routes"
)
