package controller

import (
	"encoding/json"
	"log"
	"time"

	"k8s.io/utils/clock"
)

// eventLog writes structured controller events as one JSON object per line.
type eventLog struct {
	runID string
	clock clock.PassiveClock
}

// logEvent logs a structured event in JSON format.
func (l *eventLog) logEvent(component, eventType string, data map[string]interface{}) {
	if data == nil {
		data = make(map[string]interface{})
	}
	data["timestamp"] = l.clock.Now().UTC().Format(time.RFC3339Nano)
	data["level"] = "info"
	data["component"] = component
	data["event_type"] = eventType
	data["run_id"] = l.runID

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
