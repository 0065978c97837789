package commands

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/de-tools/research-reports/pkg/runtime/terminal/export"
	"github.com/de-tools/research-reports/pkg/services/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSession struct {
	mock.Mock
}

func (m *mockSession) ResolvePrincipal(ctx context.Context, userID string, rootRequested bool) (domain.Principal, error) {
	args := m.Called(ctx, userID, rootRequested)
	return args.Get(0).(domain.Principal), args.Error(1)
}

func (m *mockSession) Dispatch(ctx context.Context, token string, principal domain.Principal, raw url.Values) (any, error) {
	args := m.Called(ctx, token, principal, raw)
	return args.Get(0), args.Error(1)
}

func (m *mockSession) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func connectTo(session Session, err error) Connector {
	return func(context.Context, string, report.Registry) (Session, error) {
		return session, err
	}
}

func TestParseParams(t *testing.T) {
	values, err := ParseParams([]string{"projects=a", "projects=b", "start_date=2024-01-01", "empty="})
	require.NoError(t, err)
	assert.Equal(t, url.Values{
		"projects":   {"a", "b"},
		"start_date": {"2024-01-01"},
		"empty":      {""},
	}, values)

	_, err = ParseParams([]string{"novalue"})
	assert.EqualError(t, err, `invalid parameter "novalue", expected key=value`)

	_, err = ParseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestGenerateCmd(t *testing.T) {
	usage := domain.UsageReport{Months: []domain.MonthBucket{{Year: 2024, Month: 3, SessionCount: 4}}}
	principal := domain.Principal{ID: "admin@example.com", Superuser: true}

	tests := []struct {
		name     string
		args     []string
		setup    func(s *mockSession)
		connErr  error
		contains string
		wantErr  string
	}{
		{
			name: "json output",
			args: []string{"usage", "--as", "admin@example.com", "--root", "--param", "type=month", "--format", "json"},
			setup: func(s *mockSession) {
				s.On("ResolvePrincipal", mock.Anything, "admin@example.com", true).Return(principal, nil)
				s.On("Dispatch", mock.Anything, "usage", principal, url.Values{"type": {"month"}}).Return(usage, nil)
				s.On("Close", mock.Anything).Return(nil)
			},
			contains: `"session_count": 4`,
		},
		{
			name: "table output",
			args: []string{"usage", "--as", "admin@example.com", "--param", "type=month"},
			setup: func(s *mockSession) {
				s.On("ResolvePrincipal", mock.Anything, "admin@example.com", false).Return(domain.Principal{ID: "admin@example.com"}, nil)
				s.On("Dispatch", mock.Anything, "usage", domain.Principal{ID: "admin@example.com"}, url.Values{"type": {"month"}}).Return(usage, nil)
				s.On("Close", mock.Anything).Return(nil)
			},
			contains: "| 2024-03",
		},
		{
			name: "dispatch failure",
			args: []string{"site", "--as", "user@example.com"},
			setup: func(s *mockSession) {
				s.On("ResolvePrincipal", mock.Anything, "user@example.com", false).Return(domain.Principal{ID: "user@example.com"}, nil)
				s.On("Dispatch", mock.Anything, "site", domain.Principal{ID: "user@example.com"}, url.Values{}).Return(nil, report.ErrForbidden)
				s.On("Close", mock.Anything).Return(nil)
			},
			wantErr: "failed to generate site report",
		},
		{
			name:    "connect failure",
			args:    []string{"site", "--as", "user@example.com"},
			setup:   func(*mockSession) {},
			connErr: errors.New("no route to host"),
			wantErr: "failed to connect: no route to host",
		},
		{
			name:    "bad format",
			args:    []string{"site", "--as", "user@example.com", "--format", "xml"},
			setup:   func(*mockSession) {},
			wantErr: `unsupported format "xml"`,
		},
		{
			name:    "missing identity",
			args:    []string{"site"},
			setup:   func(*mockSession) {},
			wantErr: `required flag(s) "as" not set`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &mockSession{}
			tt.setup(session)

			var out bytes.Buffer
			cmd := NewGenerateCmd(report.DefaultRegistry(), connectTo(session, tt.connErr), export.NewReporter(&out))
			cmd.SetArgs(tt.args)
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SilenceUsage = true

			err := cmd.ExecuteContext(context.Background())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Contains(t, out.String(), tt.contains)
			}
			session.AssertExpectations(t)
		})
	}
}

func TestTypesCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := NewTypesCmd(report.DefaultRegistry())
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "accesslog\nproject\nsite\nusage\n", out.String())
}
