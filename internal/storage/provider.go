package storage

import "slidecast/internal/ports"

// Provider is the storage contract used across the API and CLI.
// It is an alias to ports.StorageProvider to keep call-sites simple.
type Provider = ports.StorageProvider
