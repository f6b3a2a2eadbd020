package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/rachadinha/internal/models"
	"github.com/mmynk/rachadinha/internal/storage"
)

// snapshotFile is the on-disk form of a session. Participants are referenced
// by name from item members.
type snapshotFile struct {
	Name          string   `yaml:"name" json:"name"`
	Table         string   `yaml:"table" json:"table"`
	ServiceCharge *float64 `yaml:"service_charge" json:"service_charge"`
	FlatFee       *float64 `yaml:"flat_fee" json:"flat_fee"`

	Participants []struct {
		Name string `yaml:"name" json:"name"`
		Paid bool   `yaml:"paid" json:"paid"`
	} `yaml:"participants" json:"participants"`

	Items []struct {
		Name    string   `yaml:"name" json:"name"`
		Price   float64  `yaml:"price" json:"price"`
		Members []string `yaml:"members" json:"members"`
	} `yaml:"items" json:"items"`
}

// defaults fill values the file leaves out.
type defaults struct {
	serviceCharge float64
	flatFee       float64
}

// loadSnapshot reads a .yaml, .yml or .json session file.
func loadSnapshot(path string, d defaults) (*models.Session, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var file snapshotFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".json":
		err = json.Unmarshal(data, &file)
	default:
		return nil, 0, fmt.Errorf("unsupported snapshot format %q (use .yaml or .json)", filepath.Ext(path))
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return file.toSession(d)
}

func (f *snapshotFile) toSession(d defaults) (*models.Session, float64, error) {
	session := &models.Session{
		ID:                   "local",
		Name:                 storage.SessionName(f.Name),
		ServiceChargePercent: d.serviceCharge,
		Status:               models.StatusActive,
		TableNumber:          strings.TrimSpace(f.Table),
	}
	if f.ServiceCharge != nil {
		session.ServiceChargePercent = *f.ServiceCharge
	}
	flatFee := d.flatFee
	if f.FlatFee != nil {
		flatFee = *f.FlatFee
	}

	known := make(map[string]bool, len(f.Participants))
	for _, p := range f.Participants {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, 0, fmt.Errorf("participant without a name")
		}
		if known[name] {
			return nil, 0, fmt.Errorf("participant %q listed twice", name)
		}
		known[name] = true
		session.Participants = append(session.Participants, models.Participant{ID: name, SessionID: session.ID, Name: name, Paid: p.Paid})
	}

	for i, it := range f.Items {
		item := models.Item{
			ID:        fmt.Sprintf("item-%d", i+1),
			SessionID: session.ID,
			Name:      strings.TrimSpace(it.Name),
			Price:     it.Price,
		}
		for _, m := range it.Members {
			m = strings.TrimSpace(m)
			if !known[m] {
				return nil, 0, fmt.Errorf("item %q: unknown participant %q", item.Name, m)
			}
			item.MemberIDs = append(item.MemberIDs, m)
		}
		session.Items = append(session.Items, item)
	}

	return session, flatFee, nil
}
