package config

type WorkerKeyStruct struct {
	AuthEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	AuthEventsQueue: "auth_events_queue",
}
