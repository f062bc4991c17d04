package trainer

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

type uiModelPersistenceData struct {
	LastWorkoutID string `json:"last_workout_id"`
}

type uiModelPersistence struct {
	filePath string
	mu       sync.Mutex
	data     uiModelPersistenceData
	logger   *log.Logger
}

func newUIModelPersistence(stateDir string, logger *log.Logger) *uiModelPersistence {
	if stateDir == "" {
		stateDir = "."
	}
	p := &uiModelPersistence{
		filePath: filepath.Join(stateDir, "ui_state.json"),
		logger:   logger,
	}
	p.load()
	return p
}

func (p *uiModelPersistence) getLastWorkoutID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.LastWorkoutID
}

func (p *uiModelPersistence) setLastWorkoutID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data.LastWorkoutID == id {
		return
	}
	p.logger.Printf("UIModelPersistence: setLastWorkoutID -> %q", id)
	p.data.LastWorkoutID = id
	p.save()
}

func (p *uiModelPersistence) load() {
	p.data = uiModelPersistenceData{}
	raw, err := os.ReadFile(p.filePath)
	if err != nil {
		p.logger.Printf("UIModelPersistence: load %s (no existing file)", p.filePath)
		return
	}
	if err := json.Unmarshal(raw, &p.data); err != nil {
		p.logger.Printf("UIModelPersistence: load %s failed to parse: %v", p.filePath, err)
		return
	}
	p.logger.Printf("UIModelPersistence: load %s -> last workout %q", p.filePath, p.data.LastWorkoutID)
}

// save must be called with mu held
func (p *uiModelPersistence) save() {
	if err := os.MkdirAll(filepath.Dir(p.filePath), 0755); err != nil {
		p.logger.Printf("UIModelPersistence: save mkdir failed: %v", err)
		return
	}
	raw, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		p.logger.Printf("UIModelPersistence: save marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(p.filePath, raw, 0644); err != nil {
		p.logger.Printf("UIModelPersistence: save %s failed: %v", p.filePath, err)
		return
	}
	p.logger.Printf("UIModelPersistence: save %s", p.filePath)
}
