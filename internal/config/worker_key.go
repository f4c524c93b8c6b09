package config

type WorkerKeyStruct struct {
	NotifyDispatchQueue string
}

var WorkerKey = &WorkerKeyStruct{
	NotifyDispatchQueue: "notify_dispatch_queue",
}
