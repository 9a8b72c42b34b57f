package service

import "time"

type Source string

const (
	// SourceCache: the read was served from a fresh snapshot.
	SourceCache Source = "cache"
	// SourceSync: the read triggered (or joined) an upstream refresh.
	SourceSync Source = "sync"
)

type ListStats struct {
	Source   Source
	SyncMs   float64
	LastSync time.Time
}

type HealthInfo struct {
	OK        bool      `json:"ok"`
	CacheSize int       `json:"cacheSize"`
	LastSync  time.Time `json:"lastSync"`
}
