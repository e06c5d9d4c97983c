package configuration_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/config-vault/server/internal/migrations"
	configurationrepo "github.com/config-vault/server/internal/repositories/configuration"
	"github.com/config-vault/server/internal/repositories/configurationdetail"
	projectrepo "github.com/config-vault/server/internal/repositories/project"
	userrepo "github.com/config-vault/server/internal/repositories/user"
	"github.com/config-vault/server/internal/services/configuration"
	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
)

type fixture struct {
	svc       *configuration.Service
	db        database.DB
	projectID string
}

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	logger := getTestLogger()
	db, err := database.Connect(ctx, logger, database.Config{
		Path:         filepath.Join(t.TempDir(), "test.sqlite"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrationService(db, logger, migrations.Migrations).Run(ctx))

	users := userrepo.NewRepository(db, logger)
	projects := projectrepo.NewRepository(db, logger)
	configs := configurationrepo.NewRepository(db, logger)
	details := configurationdetail.NewRepository(db, logger)

	owner, err := users.Create(ctx, database.Fields{
		"username":  "owner",
		"password":  "irrelevant",
		"role":      models.RoleUser,
		"is_active": true,
	})
	require.NoError(t, err)

	project, err := projects.Create(ctx, database.Fields{
		"user_id":   owner.ID,
		"name":      "demo project",
		"is_active": true,
	})
	require.NoError(t, err)

	return &fixture{
		svc:       configuration.NewService(logger, configs, details, projects),
		db:        db,
		projectID: project.ID,
	}
}

func createRequest(projectID string) models.CreateConfigurationRequest {
	return models.CreateConfigurationRequest{
		ProjectID: projectID,
		Name:      "api config",
		FileType:  "env",
		FilePath:  "/srv/api/.env",
		Detail: models.CreateConfigurationDetailPayload{
			Environment: models.EnvironmentDevelopment,
			Env:         "DATABASE_URL=sqlite://dev.db",
			Code:        "dev",
		},
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("WritesConfigurationAndDetailTogether", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.svc.Create(ctx, createRequest(f.projectID))
		require.NoError(t, err)

		assert.Equal(t, "api config", result["name"])
		details, ok := result["configuration_details"].([]map[string]any)
		require.True(t, ok)
		require.Len(t, details, 1)
		assert.Equal(t, models.EnvironmentDevelopment, details[0]["environment"])
	})

	t.Run("UnknownProjectIsBadRequest", func(t *testing.T) {
		f := newFixture(t)

		req := createRequest("11111111-1111-1111-1111-111111111111")
		_, err := f.svc.Create(ctx, req)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("DetailFailureRollsBackConfiguration", func(t *testing.T) {
		f := newFixture(t)

		// force the second write of the transaction to fail
		_, err := f.db.ExecContext(ctx, "DROP TABLE configuration_detail")
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, createRequest(f.projectID))
		require.Error(t, err)

		var count int
		require.NoError(t, f.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM configurations"))
		assert.Equal(t, 0, count, "configuration row rolled back with the failed detail")
	})

	t.Run("SharedConfigurationGetsToken", func(t *testing.T) {
		f := newFixture(t)

		req := createRequest(f.projectID)
		req.SharingType = models.SharingShared
		result, err := f.svc.Create(ctx, req)
		require.NoError(t, err)
		assert.NotEmpty(t, result["share_token"])
	})
}

func TestService_UpdateSharing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.Create(ctx, createRequest(f.projectID))
	require.NoError(t, err)
	id := created["id"].(string)
	assert.Nil(t, created["share_token"])

	t.Run("SwitchingToSharedMintsToken", func(t *testing.T) {
		sharing := models.SharingShared
		updated, err := f.svc.Update(ctx, id, models.UpdateConfigurationRequest{SharingType: &sharing})
		require.NoError(t, err)

		token, ok := updated["share_token"].(string)
		require.True(t, ok)
		assert.NotEmpty(t, token)

		t.Run("ShareTokenResolves", func(t *testing.T) {
			shared, err := f.svc.GetShared(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, id, shared["id"])
		})

		t.Run("SwitchingBackToPrivateClearsToken", func(t *testing.T) {
			private := models.SharingPrivate
			reverted, err := f.svc.Update(ctx, id, models.UpdateConfigurationRequest{SharingType: &private})
			require.NoError(t, err)
			assert.Nil(t, reverted["share_token"])

			_, err = f.svc.GetShared(ctx, token)
			require.Error(t, err)
			assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
		})
	})

	t.Run("UnknownIDIsBadRequest", func(t *testing.T) {
		name := "renamed"
		_, err := f.svc.Update(ctx, "22222222-2222-2222-2222-222222222222", models.UpdateConfigurationRequest{Name: &name})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("EmptyChangeSetIsBadRequest", func(t *testing.T) {
		_, err := f.svc.Update(ctx, id, models.UpdateConfigurationRequest{})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})
}

func TestService_Details(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.Create(ctx, createRequest(f.projectID))
	require.NoError(t, err)
	id := created["id"].(string)

	t.Run("AddSecondEnvironment", func(t *testing.T) {
		detail, err := f.svc.AddDetail(ctx, models.CreateConfigurationDetailRequest{
			ConfigurationID: id,
			Environment:     models.EnvironmentProduction,
			Env:             "DATABASE_URL=postgres://prod",
			Code:            "prod",
		})
		require.NoError(t, err)
		assert.Equal(t, models.EnvironmentProduction, detail.Environment)

		details, err := f.svc.ListDetails(ctx, id)
		require.NoError(t, err)
		assert.Len(t, details, 2)
	})

	t.Run("DuplicateEnvironmentIsBadRequest", func(t *testing.T) {
		_, err := f.svc.AddDetail(ctx, models.CreateConfigurationDetailRequest{
			ConfigurationID: id,
			Environment:     models.EnvironmentDevelopment,
			Env:             "X=1",
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("UpdateDetail", func(t *testing.T) {
		details, err := f.svc.ListDetails(ctx, id)
		require.NoError(t, err)
		require.NotEmpty(t, details)

		env := "DATABASE_URL=sqlite://changed.db"
		updated, err := f.svc.UpdateDetail(ctx, details[0].ID, models.UpdateConfigurationDetailRequest{Env: &env})
		require.NoError(t, err)
		assert.Equal(t, env, updated.Env)
	})

	t.Run("DeleteDetail", func(t *testing.T) {
		details, err := f.svc.ListDetails(ctx, id)
		require.NoError(t, err)
		before := len(details)
		require.NotZero(t, before)

		require.NoError(t, f.svc.DeleteDetail(ctx, details[0].ID))

		remaining, err := f.svc.ListDetails(ctx, id)
		require.NoError(t, err)
		assert.Len(t, remaining, before-1)
	})
}

func TestService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.Create(ctx, createRequest(f.projectID))
	require.NoError(t, err)
	id := created["id"].(string)

	require.NoError(t, f.svc.Delete(ctx, id))

	var detailCount int
	require.NoError(t, f.db.GetContext(ctx, &detailCount, "SELECT COUNT(*) FROM configuration_detail"))
	assert.Equal(t, 0, detailCount, "detail rows cascade with the configuration")

	err = f.svc.Delete(ctx, id)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}

func TestService_ListByProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, createRequest(f.projectID))
	require.NoError(t, err)

	second := createRequest(f.projectID)
	second.Name = "worker config"
	second.Detail.Environment = models.EnvironmentStaging
	_, err = f.svc.Create(ctx, second)
	require.NoError(t, err)

	results, err := f.svc.ListByProject(ctx, f.projectID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, result := range results {
		details, ok := result["configuration_details"].([]map[string]any)
		require.True(t, ok)
		assert.Len(t, details, 1)
	}
}
