package repository

import (
	"testing"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresSessionRepoはSessionRepositoryインターフェースを満たすことを検証
func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

// PostgresJobRepoはJobRepositoryインターフェースを満たすことを検証
func TestPostgresJobRepo_ImplementsInterface(t *testing.T) {
	var _ JobRepository = (*PostgresJobRepo)(nil)
}

// PostgresEventRepoはEventRepositoryインターフェースを満たすことを検証
func TestPostgresEventRepo_ImplementsInterface(t *testing.T) {
	var _ EventRepository = (*PostgresEventRepo)(nil)
}

// PostgresStatsRepoはStatsRepositoryインターフェースを満たすことを検証
func TestPostgresStatsRepo_ImplementsInterface(t *testing.T) {
	var _ StatsRepository = (*PostgresStatsRepo)(nil)
}

// 各コンストラクタが正しく初期化されることを検証
func TestNewPostgresRepos_Initialize(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Error("NewPostgresUserRepo returned nil")
	}
	if NewPostgresSessionRepo(nil) == nil {
		t.Error("NewPostgresSessionRepo returned nil")
	}
	if NewPostgresJobRepo(nil) == nil {
		t.Error("NewPostgresJobRepo returned nil")
	}
	if NewPostgresEventRepo(nil) == nil {
		t.Error("NewPostgresEventRepo returned nil")
	}
	if NewPostgresStatsRepo(nil) == nil {
		t.Error("NewPostgresStatsRepo returned nil")
	}
}

// JoinOutcomeの列挙値が互いに異なることを検証
func TestJoinOutcome_DistinctValues(t *testing.T) {
	outcomes := []JoinOutcome{JoinOK, JoinEventNotFound, JoinAlreadyJoined, JoinEventFull}
	seen := make(map[JoinOutcome]bool)
	for _, o := range outcomes {
		if seen[o] {
			t.Errorf("JoinOutcome %v が重複している", o)
		}
		seen[o] = true
	}
}
