package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/wa-validator/internal/entity"
	"github.com/octobees/wa-validator/internal/repository"
	"github.com/octobees/wa-validator/internal/service"
)

type memoryUsers struct {
	users []entity.User
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			return &m.users[i], nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUsers) Create(_ context.Context, email, name, passwordHash, role string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return nil, repository.ErrEmailDuplicate
		}
	}
	u := entity.User{ID: uuid.New(), Email: email, Name: name, PasswordHash: passwordHash, Role: role, CreatedAt: time.Now()}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *memoryUsers) List(context.Context) ([]entity.User, error) {
	return m.users, nil
}

func (m *memoryUsers) Delete(_ context.Context, id uuid.UUID) error {
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func withUsers(t *testing.T, repo *memoryUsers) {
	t.Helper()
	prev := openUserService
	openUserService = func(context.Context) (*service.UserService, func(), error) {
		return service.NewUserService(repo), func() {}, nil
	}
	t.Cleanup(func() { openUserService = prev })
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		normalizeJSON = false
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const contactsCSV = `Client ID,First Name,Last Name,Account Name,Country,Phone,Mobile Code,Mobile,Email
C-1,Ana,Silva,Acme,Brazil,+55 11 91234-5678,,,ana@acme.com
,Skipped,Row,,,,,,
C-2,Bob,Lee,Initech,United States,,,,bob@initech.com
`

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["normalize"])
	assert.True(t, names["user"])

	userNames := make(map[string]bool)
	for _, c := range userCmd.Commands() {
		userNames[c.Name()] = true
	}
	assert.True(t, userNames["create"])
	assert.True(t, userNames["list"])
	assert.True(t, userNames["delete"])
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "phonectl", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotNil(t, rootCmd.PersistentPreRunE)
}

func TestUserCreateCmd_Flags(t *testing.T) {
	for _, name := range []string{"email", "name", "password", "role"} {
		assert.NotNil(t, userCreateCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "user", userCreateCmd.Flags().Lookup("role").DefValue)
}

func TestNormalizeCmd_Table(t *testing.T) {
	path := writeCSV(t, contactsCSV)

	out, _, err := execute(t, "normalize", path)
	require.NoError(t, err)

	assert.Contains(t, out, "CLIENT ID")
	assert.Contains(t, out, "C-1")
	assert.Contains(t, out, "C-2")
	assert.NotContains(t, out, "Skipped")
	assert.Contains(t, out, "2 rows")
}

func TestNormalizeCmd_JSON(t *testing.T) {
	path := writeCSV(t, contactsCSV)

	out, _, err := execute(t, "normalize", "--json", path)
	require.NoError(t, err)

	var payload struct {
		Rows    []service.EnrichedRow `json:"rows"`
		Summary service.ImportSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Len(t, payload.Rows, 2)
	assert.Equal(t, 2, payload.Summary.Total)
	assert.Equal(t, "C-1", payload.Rows[0].ClientID)
	assert.True(t, payload.Rows[1].NeedsEnrichment, "a row without any phone needs enrichment")
}

func TestNormalizeCmd_RejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, _, err := execute(t, "normalize", path)
	require.Error(t, err)

	var fileErr service.FileValidationError
	assert.ErrorAs(t, err, &fileErr)
}

func TestNormalizeCmd_MissingFile(t *testing.T) {
	_, _, err := execute(t, "normalize", filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestUserCommands(t *testing.T) {
	repo := &memoryUsers{}
	withUsers(t, repo)

	out, _, err := execute(t, "user", "create", "--email", " Ops@Example.com ", "--name", "Ops", "--password", "Str0ng!Passw0rd", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "created ops@example.com")
	require.Len(t, repo.users, 1)
	assert.Equal(t, "admin", repo.users[0].Role)

	out, _, err = execute(t, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ops@example.com")
	assert.Contains(t, out, repo.users[0].ID.String())

	id := repo.users[0].ID.String()
	out, _, err = execute(t, "user", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+id)
	assert.Empty(t, repo.users)
}

func TestUserCreateCmd_WeakPassword(t *testing.T) {
	repo := &memoryUsers{}
	withUsers(t, repo)

	_, stderr, err := execute(t, "user", "create", "--email", "weak@example.com", "--password", "short", "--role", "user")
	require.Error(t, err)
	assert.Contains(t, stderr, "  - ")
	assert.Empty(t, repo.users)
}

func TestUserDeleteCmd_InvalidID(t *testing.T) {
	withUsers(t, &memoryUsers{})

	_, _, err := execute(t, "user", "delete", "not-a-uuid")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrInvalidUserID)
}
