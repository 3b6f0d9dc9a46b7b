package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newDirectoryRepoWithMock(t *testing.T) (*DirectoryRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DirectoryRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestLookupContactsBuildsOrderedPattern(t *testing.T) {
	repo, mock, done := newDirectoryRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"name", "role", "department", "phone", "email"}).
		AddRow("Roy Canteen", "Canteen", "Campus Services", "+91-99999-11111", "roy@campus.edu")

	mock.ExpectQuery("SELECT name, role, department, phone, email").
		WithArgs("%roy%canteen%", maxDirectoryRows).
		WillReturnRows(rows)

	records, err := repo.LookupContacts(context.Background(), []string{"roy", "canteen"})
	if err != nil {
		t.Fatalf("LookupContacts() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Phone != "+91-99999-11111" {
		t.Fatalf("phone = %q", records[0].Phone)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLookupContactsNoEntitiesSkipsQuery(t *testing.T) {
	repo, mock, done := newDirectoryRepoWithMock(t)
	defer done()

	records, err := repo.LookupContacts(context.Background(), []string{"  ", ""})
	if err != nil {
		t.Fatalf("LookupContacts() error = %v", err)
	}
	if records != nil {
		t.Fatalf("records = %v, want nil", records)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLookupLocationsScansRecords(t *testing.T) {
	repo, mock, done := newDirectoryRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"name", "building", "floor", "description"}).
		AddRow("Seminar Hall", "Academic Block B", "2", "Main seminar venue").
		AddRow("Seminar Hall Annex", "Academic Block B", "3", "Overflow hall")

	mock.ExpectQuery("SELECT name, building, floor, description").
		WithArgs("%seminar%", maxDirectoryRows).
		WillReturnRows(rows)

	records, err := repo.LookupLocations(context.Background(), []string{"seminar"})
	if err != nil {
		t.Fatalf("LookupLocations() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Building != "Academic Block B" {
		t.Fatalf("building = %q", records[0].Building)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
