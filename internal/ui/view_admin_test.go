package ui

import (
	"testing"

	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNewUser(t *testing.T) {
	tests := []struct {
		in      string
		want    resources.User
		wantErr bool
	}{
		{in: "ana", want: resources.User{Username: "ana"}},
		{in: "ana ana@example.com", want: resources.User{Username: "ana", Email: "ana@example.com"}},
		{in: "ana ops,dev", want: resources.User{Username: "ana", Groups: []string{"ops", "dev"}}},
		{in: "ana ana@example.com ops,,dev", want: resources.User{Username: "ana", Email: "ana@example.com", Groups: []string{"ops", "dev"}}},
		{in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseNewUser(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAuditSettings(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    resources.AuditSettings
		wantErr bool
	}{
		{
			name: "valid",
			text: "enabled: true\nretentionDays: 30\nresources: [secrets]\n",
			want: resources.AuditSettings{Enabled: true, RetentionDays: 30, Resources: []string{"secrets"}},
		},
		{name: "unknown field", text: "enabled: true\nretention: 30\n", wantErr: true},
		{name: "negative retention", text: "retentionDays: -1\n", wantErr: true},
		{name: "not yaml", text: "enabled: [", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAuditSettings(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func loadedUsersView(t *testing.T, backend *fake.Backend) *UsersView {
	t.Helper()
	v := NewUsersView(newTestEnv(t, backend))
	v.SetSize(120, 20)
	_, _ = v.Update(runCmd(t, v.Init()))
	return v
}

func TestUsersViewCreate(t *testing.T) {
	backend := fake.NewBackend("prod")
	v := loadedUsersView(t, backend)
	assert.Contains(t, v.View(), "No users")

	_, cmd := v.Update(keyPress("N"))
	m := openedModal(t, cmd)
	m = typeText(m, "ana ana@example.com ops")
	_, cmd = m.Update(keyPress("enter"))

	done, ok := runCmd(t, cmd).(adminDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	require.Len(t, backend.Users, 1)
	assert.Equal(t, "ana@example.com", backend.Users[0].Email)

	_, cmd = v.Update(done)
	assert.NotNil(t, cmd)
}

func TestUsersViewDelete(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.Users = []resources.User{{ID: "u1", Username: "ana"}}
	v := loadedUsersView(t, backend)
	assert.Contains(t, v.View(), "ana")

	_, cmd := v.Update(keyPress("d"))
	m := openedModal(t, cmd)
	_, cmd = m.Update(keyPress("y"))

	done, ok := runCmd(t, cmd).(adminDoneMsg)
	require.True(t, ok)
	assert.NoError(t, done.err)
	assert.Empty(t, backend.Users)
}

func TestUsersViewError(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.SetError("users", assert.AnError)
	v := loadedUsersView(t, backend)
	assert.ErrorIs(t, v.err, assert.AnError)
	assert.NotEmpty(t, v.View())
}

func TestGroupsView(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.Groups = []resources.Group{{Name: "ops", Description: "operators", Members: []string{"ana", "bo"}}}
	v := NewGroupsView(newTestEnv(t, backend))
	v.SetSize(120, 20)
	_, _ = v.Update(runCmd(t, v.Init()))

	row, ok := v.table.Selected()
	require.True(t, ok)
	assert.Equal(t, "ops", row.Name())
	assert.Equal(t, "2", row.Text("members"))
}

func TestAuditViewSave(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.Audit = resources.AuditSettings{Enabled: true, RetentionDays: 7}
	v := NewAuditView(newTestEnv(t, backend))
	v.SetSize(80, 20)
	_, _ = v.Update(runCmd(t, v.Init()))
	assert.Contains(t, v.View(), "retentionDays: 7")

	cmd, err := v.save("enabled: true\nretentionDays: -3\n")
	assert.Error(t, err)
	assert.Nil(t, cmd)

	cmd, err = v.save("enabled: false\nretentionDays: 90\n")
	require.NoError(t, err)
	done, ok := runCmd(t, cmd).(adminDoneMsg)
	require.True(t, ok)
	assert.NoError(t, done.err)
	assert.Equal(t, resources.AuditSettings{RetentionDays: 90}, backend.Audit)
}
