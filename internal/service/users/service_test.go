package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/repository/memory"
)

func newService() *Service {
	return NewService(memory.New().Users(), nil)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	user, err := svc.Create(ctx, models.CreateUserRequest{
		FirebaseUID: "uid-1",
		Name:        " Ravi ",
		Role:        models.RoleFarmer,
		FarmingType: models.FarmingOrganic,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", user.Name)
	assert.False(t, user.ID.IsZero())

	_, err = svc.Create(ctx, models.CreateUserRequest{FirebaseUID: "uid-1", Name: "Ravi", Role: models.RoleFarmer})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  models.CreateUserRequest
	}{
		{"missing uid", models.CreateUserRequest{Name: "a", Role: models.RoleFarmer}},
		{"missing name", models.CreateUserRequest{FirebaseUID: "u", Role: models.RoleFarmer}},
		{"bad role", models.CreateUserRequest{FirebaseUID: "u", Name: "a", Role: "admin"}},
		{"bad farming type", models.CreateUserRequest{FirebaseUID: "u", Name: "a", Role: models.RoleAgent, FarmingType: "hydro"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService().Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	_, err := svc.Create(ctx, models.CreateUserRequest{FirebaseUID: "uid-2", Name: "Asha", Role: models.RoleVendor})
	require.NoError(t, err)

	city := models.Location{City: "Pune"}
	terrace := models.FarmingTerrace
	updated, err := svc.Update(ctx, "uid-2", models.UpdateUserRequest{Location: &city, FarmingType: &terrace})
	require.NoError(t, err)
	assert.Equal(t, "Pune", updated.Location.City)
	assert.Equal(t, models.FarmingTerrace, updated.FarmingType)

	stored, err := svc.GetByUID(ctx, "uid-2")
	require.NoError(t, err)
	assert.Equal(t, "Pune", stored.Location.City)

	empty := "  "
	_, err = svc.Update(ctx, "uid-2", models.UpdateUserRequest{Name: &empty})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Update(ctx, "nobody", models.UpdateUserRequest{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
