package roster

import "path/filepath"

// Config locates the three stores and the backup root.
// File and directory names are resolved against DataDir.
type Config struct {
	DataDir         string
	SpreadsheetFile string
	JSONFile        string
	DocumentFile    string
	BackupDir       string
}

// DefaultConfig returns the file names the bot has always used
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir:         dataDir,
		SpreadsheetFile: "TournamentData.xlsx",
		JSONFile:        "TournamentData.json",
		DocumentFile:    "TournamentData.docx",
		BackupDir:       "backups",
	}
}

func (c Config) SpreadsheetPath() string { return filepath.Join(c.DataDir, c.SpreadsheetFile) }
func (c Config) JSONPath() string        { return filepath.Join(c.DataDir, c.JSONFile) }
func (c Config) DocumentPath() string    { return filepath.Join(c.DataDir, c.DocumentFile) }
func (c Config) BackupPath() string      { return filepath.Join(c.DataDir, c.BackupDir) }

func (c Config) lockPath() string {
	return filepath.Join(c.DataDir, ".tourneybot.lock")
}
