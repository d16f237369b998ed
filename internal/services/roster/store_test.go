package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourneybot/internal/dependencies/mocks"
	"github.com/mcoot/tourneybot/internal/model"
	"github.com/mcoot/tourneybot/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	cfg   Config
	clock *mocks.MockClock
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.cfg = DefaultConfig(s.T().TempDir())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.store = New(s.cfg, s.clock, testutil.NopLogger())
	s.ctx = context.Background()

	s.Require().NoError(s.store.EnsureStoresExist(s.ctx))
}

func (s *StoreSuite) record(n int) model.Registration {
	return model.Registration{
		Country:  "Ethiopia",
		Username: fmt.Sprintf("Player%d", n),
		UID:      fmt.Sprintf("00%d", n),
		Level:    "350",
	}
}

func (s *StoreSuite) readFile(path string) []byte {
	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	return data
}

func (s *StoreSuite) rows() [][]string {
	rows, err := spreadsheetRows(s.readFile(s.cfg.SpreadsheetPath()))
	s.Require().NoError(err)
	return rows
}

func (s *StoreSuite) jsonRecords() []model.Registration {
	var records []model.Registration
	s.Require().NoError(json.Unmarshal(s.readFile(s.cfg.JSONPath()), &records))
	return records
}

func (s *StoreSuite) paragraphs() []string {
	paragraphs, err := documentParagraphs(s.readFile(s.cfg.DocumentPath()))
	s.Require().NoError(err)
	return paragraphs
}

// EnsureStoresExist tests

func (s *StoreSuite) TestEnsureStoresExistCreatesEmptyStores() {
	s.Equal([][]string{{"Country", "Username", "UID", "Level"}}, s.rows())
	s.Equal("[]", string(s.readFile(s.cfg.JSONPath())))
	s.Empty(s.paragraphs())

	info, err := os.Stat(s.cfg.BackupPath())
	s.Require().NoError(err)
	s.True(info.IsDir())
}

func (s *StoreSuite) TestEnsureStoresExistIsIdempotent() {
	before := map[string][]byte{}
	for _, p := range s.store.Paths() {
		before[p] = s.readFile(p)
	}

	s.Require().NoError(s.store.EnsureStoresExist(s.ctx))

	for _, p := range s.store.Paths() {
		s.Equal(before[p], s.readFile(p), p)
	}
	s.Len(s.rows(), 1)
}

func (s *StoreSuite) TestEnsureStoresExistKeepsData() {
	s.Require().NoError(s.store.AppendRecord(s.ctx, s.record(1)))

	s.Require().NoError(s.store.EnsureStoresExist(s.ctx))

	s.Len(s.rows(), 2)
	s.Len(s.jsonRecords(), 1)
}

func (s *StoreSuite) TestEnsureStoresExistCreatesOnlyMissing() {
	s.Require().NoError(s.store.AppendRecord(s.ctx, s.record(1)))
	s.Require().NoError(os.Remove(s.cfg.JSONPath()))

	s.Require().NoError(s.store.EnsureStoresExist(s.ctx))

	s.Len(s.rows(), 2)
	s.Empty(s.jsonRecords())
}

// AppendRecord tests

func (s *StoreSuite) TestAppendRecordWritesAllStores() {
	rec := model.Registration{Country: "Ethiopia", Username: "Player123", UID: "1234567890", Level: "350"}

	s.Require().NoError(s.store.AppendRecord(s.ctx, rec))

	rows := s.rows()
	s.Require().Len(rows, 2)
	s.Equal([]string{"Ethiopia", "Player123", "1234567890", "350"}, rows[1])

	s.Equal([]model.Registration{rec}, s.jsonRecords())

	s.Equal([]string{
		"Country: Ethiopia",
		"Username: Player123",
		"UID: 1234567890",
		"Level: 350",
		"\n------------------------------\n",
	}, s.paragraphs())
}

func (s *StoreSuite) TestAppendRecordIsAppendOnly() {
	const n = 5
	for i := 1; i <= n; i++ {
		s.Require().NoError(s.store.AppendRecord(s.ctx, s.record(i)))
	}

	rows := s.rows()
	s.Len(rows, n+1)
	records := s.jsonRecords()
	s.Len(records, n)
	for i := 1; i <= n; i++ {
		s.Equal(fmt.Sprintf("Player%d", i), rows[i][1])
		s.Equal(fmt.Sprintf("Player%d", i), records[i-1].Username)
	}
	s.Len(s.paragraphs(), n*5)
}

func (s *StoreSuite) TestAppendRecordKeepsUIDAsText() {
	rec := s.record(7)

	s.Require().NoError(s.store.AppendRecord(s.ctx, rec))

	s.Equal("007", s.rows()[1][2])
	s.Contains(string(s.readFile(s.cfg.JSONPath())), `"UID": "007"`)
}

func (s *StoreSuite) TestAppendRecordPrettyPrintsJSON() {
	s.Require().NoError(s.store.AppendRecord(s.ctx, s.record(1)))

	expected := "[\n    {\n        \"Country\": \"Ethiopia\",\n        \"Username\": \"Player1\",\n" +
		"        \"UID\": \"001\",\n        \"Level\": \"350\"\n    }\n]"
	s.Equal(expected, string(s.readFile(s.cfg.JSONPath())))
}

func (s *StoreSuite) TestAppendRecordRejectsIncompleteRecord() {
	rec := s.record(1)
	rec.UID = ""

	err := s.store.AppendRecord(s.ctx, rec)
	s.ErrorIs(err, model.ErrIncompleteRegistration)

	s.Len(s.rows(), 1)
	s.Empty(s.jsonRecords())
}

func (s *StoreSuite) TestAppendRecordLeavesStoresUntouchedOnFailure() {
	s.Require().NoError(s.store.AppendRecord(s.ctx, s.record(1)))
	s.Require().NoError(os.WriteFile(s.cfg.JSONPath(), []byte("not json"), 0o644))
	spreadsheet := s.readFile(s.cfg.SpreadsheetPath())
	document := s.readFile(s.cfg.DocumentPath())

	err := s.store.AppendRecord(s.ctx, s.record(2))
	s.Require().Error(err)
	s.Contains(err.Error(), s.cfg.JSONFile)

	s.Equal(spreadsheet, s.readFile(s.cfg.SpreadsheetPath()))
	s.Equal(document, s.readFile(s.cfg.DocumentPath()))
}

func (s *StoreSuite) TestAppendRecordReportsEveryFailedStore() {
	s.Require().NoError(os.Remove(s.cfg.SpreadsheetPath()))
	s.Require().NoError(os.Remove(s.cfg.DocumentPath()))

	err := s.store.AppendRecord(s.ctx, s.record(1))
	s.Require().Error(err)
	s.Contains(err.Error(), s.cfg.SpreadsheetFile)
	s.Contains(err.Error(), s.cfg.DocumentFile)

	s.Empty(s.jsonRecords())
}

func (s *StoreSuite) TestAppendRecordLeavesNoTempFiles() {
	s.Require().NoError(s.store.AppendRecord(s.ctx, s.record(1)))

	matches, err := filepath.Glob(filepath.Join(s.cfg.DataDir, "*.tmp"))
	s.Require().NoError(err)
	s.Empty(matches)
}

func (s *StoreSuite) TestConcurrentAppendsAreSerialized() {
	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.NoError(s.store.AppendRecord(s.ctx, s.record(i)))
		}(i)
	}
	wg.Wait()

	s.Len(s.rows(), n+1)
	s.Len(s.jsonRecords(), n)
}

func (s *StoreSuite) TestAppendRecordFailsWhileLockedElsewhere() {
	other := flock.New(s.cfg.lockPath())
	s.Require().NoError(other.Lock())
	defer func() { _ = other.Unlock() }()

	ctx, cancel := context.WithTimeout(s.ctx, 200*time.Millisecond)
	defer cancel()

	err := s.store.AppendRecord(ctx, s.record(1))
	s.ErrorIs(err, model.ErrStoreLocked)
}

// Snapshot tests

func (s *StoreSuite) TestSnapshotCopiesAllStores() {
	s.Require().NoError(s.store.AppendRecord(s.ctx, s.record(1)))
	s.Require().NoError(s.store.AppendRecord(s.ctx, s.record(2)))

	dir, err := s.store.Snapshot(s.ctx)
	s.Require().NoError(err)

	s.Equal(filepath.Join(s.cfg.BackupPath(), "20240101120000"), dir)
	for _, p := range s.store.Paths() {
		s.Equal(s.readFile(p), s.readFile(filepath.Join(dir, filepath.Base(p))), p)
	}
}

func (s *StoreSuite) TestSnapshotIsPointInTime() {
	s.Require().NoError(s.store.AppendRecord(s.ctx, s.record(1)))
	dir, err := s.store.Snapshot(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.store.AppendRecord(s.ctx, s.record(2)))

	var snapshot []model.Registration
	s.Require().NoError(json.Unmarshal(s.readFile(filepath.Join(dir, s.cfg.JSONFile)), &snapshot))
	s.Len(snapshot, 1)
	s.Len(s.jsonRecords(), 2)
}

func (s *StoreSuite) TestSnapshotSameSecondFails() {
	_, err := s.store.Snapshot(s.ctx)
	s.Require().NoError(err)

	_, err = s.store.Snapshot(s.ctx)
	s.ErrorIs(err, model.ErrSnapshotExists)
}

func (s *StoreSuite) TestSnapshotRemovesPartialDirectory() {
	s.Require().NoError(os.Remove(s.cfg.DocumentPath()))

	_, err := s.store.Snapshot(s.ctx)
	s.Require().Error(err)

	names, err := s.store.ListSnapshots()
	s.Require().NoError(err)
	s.Empty(names)
}

func (s *StoreSuite) TestListSnapshotsSortedAndFiltered() {
	for i := 0; i < 3; i++ {
		_, err := s.store.Snapshot(s.ctx)
		s.Require().NoError(err)
		s.clock.Advance(time.Minute)
	}
	s.Require().NoError(os.Mkdir(filepath.Join(s.cfg.BackupPath(), "not-a-snapshot"), 0o755))

	names, err := s.store.ListSnapshots()
	s.Require().NoError(err)
	s.Equal([]string{"20240101120000", "20240101120100", "20240101120200"}, names)
}

func (s *StoreSuite) TestPruneKeepsNewest() {
	for i := 0; i < 4; i++ {
		_, err := s.store.Snapshot(s.ctx)
		s.Require().NoError(err)
		s.clock.Advance(time.Hour)
	}

	removed, err := s.store.Prune(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal([]string{"20240101120000", "20240101130000"}, removed)

	names, _ := s.store.ListSnapshots()
	s.Equal([]string{"20240101140000", "20240101150000"}, names)
}

func (s *StoreSuite) TestPruneDisabled() {
	_, _ = s.store.Snapshot(s.ctx)

	removed, err := s.store.Prune(s.ctx, 0)
	s.Require().NoError(err)
	s.Empty(removed)

	names, _ := s.store.ListSnapshots()
	s.Len(names, 1)
}
