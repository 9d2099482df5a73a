package config

type WorkerKeyStruct struct {
	PersistAlertsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAlertsQueue: "persist_alerts_queue",
}
