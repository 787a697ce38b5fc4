package models

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// FlexibleTime accepte plusieurs formats de dates dans les requêtes
type FlexibleTime struct {
	time.Time
}

// Formats acceptés, interprétés dans le fuseau horaire des événements
var flexibleLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// UnmarshalJSON implémente le unmarshaler pour accepter plusieurs formats de dates
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		ft.Time = time.Time{}
		return nil
	}

	loc := ScheduleLocation()
	for _, layout := range flexibleLayouts {
		if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
			ft.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("format de date invalide: %s", s)
}

// MarshalJSON retourne la date dans le fuseau horaire des événements
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	if ft.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte("\"" + ft.Time.In(ScheduleLocation()).Format("2006-01-02T15:04:05") + "\""), nil
}

// MarshalBSONValue stocke FlexibleTime comme une date MongoDB
func (ft *FlexibleTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if ft == nil || ft.Time.IsZero() {
		return bsontype.Null, nil, nil
	}

	// Millisecondes depuis l'epoch Unix, en little-endian
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(ft.Time.UnixMilli()))

	return bsontype.DateTime, buf, nil
}

// UnmarshalBSONValue décode une date MongoDB en FlexibleTime
func (ft *FlexibleTime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.DateTime:
		if len(data) < 8 {
			return fmt.Errorf("invalid DateTime data: need 8 bytes, got %d", len(data))
		}
		ft.Time = time.UnixMilli(int64(binary.LittleEndian.Uint64(data[:8])))
		return nil
	case bsontype.Null:
		ft.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("cannot decode %v into FlexibleTime (expected DateTime)", t)
}
