package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrEmptySlot is returned when loading a slot that holds no save.
var ErrEmptySlot = errors.New("save slot is empty")

// SaveData is a full snapshot of one playthrough: state, log, timestamp.
type SaveData struct {
	State   *GameState `yaml:"state"`
	Log     []LogEntry `yaml:"log"`
	SavedAt int64      `yaml:"saved_at"`
}

// SlotMeta summarizes a slot for the save/load screen.
type SlotMeta struct {
	Slot     int      `yaml:"slot" json:"slot"`
	IsEmpty  bool     `yaml:"is_empty" json:"is_empty"`
	SavedAt  int64    `yaml:"saved_at" json:"saved_at"`
	Day      int      `yaml:"day" json:"day"`
	Soldiers int      `yaml:"soldiers" json:"soldiers"`
	Location Location `yaml:"location" json:"location"`
}

// Store persists snapshots to numbered slot directories under a base
// directory. Each slot holds state.yaml, log.yaml and meta.yaml.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (st *Store) slotDir(slot int) string {
	return filepath.Join(st.Dir, "slot-"+strconv.Itoa(slot))
}

// Save writes a snapshot into the given slot, overwriting any previous
// save there.
func (st *Store) Save(slot int, state *GameState, log []LogEntry) error {
	dir := st.slotDir(slot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}

	data := SaveData{State: state, Log: log, SavedAt: time.Now().Unix()}

	stateBytes, err := yaml.Marshal(data.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "state.yaml"), stateBytes, 0644); err != nil {
		return err
	}

	logBytes, err := yaml.Marshal(data.Log)
	if err != nil {
		return fmt.Errorf("marshal log: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "log.yaml"), logBytes, 0644); err != nil {
		return err
	}

	meta := SlotMeta{
		Slot:     slot,
		SavedAt:  data.SavedAt,
		Day:      state.Day,
		Soldiers: state.Soldiers,
		Location: state.Location,
	}
	metaBytes, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "meta.yaml"), metaBytes, 0644)
}

// Load reads the snapshot in the given slot.
func (st *Store) Load(slot int) (*SaveData, error) {
	dir := st.slotDir(slot)

	stateBytes, err := os.ReadFile(filepath.Join(dir, "state.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrEmptySlot
		}
		return nil, err
	}
	var state GameState
	if err := yaml.Unmarshal(stateBytes, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}

	var log []LogEntry
	if logBytes, err := os.ReadFile(filepath.Join(dir, "log.yaml")); err == nil {
		if err := yaml.Unmarshal(logBytes, &log); err != nil {
			return nil, fmt.Errorf("unmarshal log: %w", err)
		}
	}

	data := &SaveData{State: &state, Log: log}
	if metaBytes, err := os.ReadFile(filepath.Join(dir, "meta.yaml")); err == nil {
		var meta SlotMeta
		if yaml.Unmarshal(metaBytes, &meta) == nil {
			data.SavedAt = meta.SavedAt
		}
	}
	return data, nil
}

// ListSlots returns metadata for every occupied slot, ordered by slot
// number. A slot counts as occupied when its state.yaml exists.
func (st *Store) ListSlots() ([]SlotMeta, error) {
	entries, err := os.ReadDir(st.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SlotMeta{}, nil
		}
		return nil, err
	}

	var slots []SlotMeta
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "slot-") {
			continue
		}
		slot, err := strconv.Atoi(strings.TrimPrefix(entry.Name(), "slot-"))
		if err != nil {
			continue
		}
		dir := st.slotDir(slot)
		if _, err := os.Stat(filepath.Join(dir, "state.yaml")); err != nil {
			continue
		}
		meta := SlotMeta{Slot: slot}
		if metaBytes, err := os.ReadFile(filepath.Join(dir, "meta.yaml")); err == nil {
			yaml.Unmarshal(metaBytes, &meta)
			meta.Slot = slot
		}
		slots = append(slots, meta)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })
	return slots, nil
}

// Delete removes a slot. Deleting an empty slot is not an error.
func (st *Store) Delete(slot int) error {
	return os.RemoveAll(st.slotDir(slot))
}
