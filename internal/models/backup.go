package models

const (
	BackupAppName = "nethu-parcel-tracker"
	BackupVersion = 1
)

// AppBackup is the portable envelope used for local export/import and the
// remote sync round trip. Restore replaces the whole dataset, never merges.
type AppBackup struct {
	AppName   string    `json:"appName"`
	Version   int       `json:"version"`
	Parcels   []*Parcel `json:"parcels"`
	AdminData AdminData `json:"adminData"`
}
