package config

type WorkerKeyStruct struct {
	PersistEventsQueue  string
	PersistAnswersQueue string
	PersistResultsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistEventsQueue:  "persist_events_queue",
	PersistAnswersQueue: "persist_answers_queue",
	PersistResultsQueue: "persist_results_queue",
}
