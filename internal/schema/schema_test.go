package schema

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-mesh/internal/model"
)

func decodeErr(t *testing.T, body string, dst interface{}) *ValidationError {
	t.Helper()
	err := Decode(strings.NewReader(body), dst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %T", err)
	return verr
}

func TestUserCreateValid(t *testing.T) {
	var in UserCreate
	err := Decode(strings.NewReader(`{"email":"juan@example.com","name":"Juan","lastname":"Perez","password":"pass1234*"}`), &in)
	require.NoError(t, err)
	assert.Equal(t, "juan@example.com", in.Email)
	assert.Equal(t, "pass1234*", in.Password)
}

func TestUserCreateRejects(t *testing.T) {
	for _, tc := range []struct {
		name  string
		body  string
		field string
	}{
		{"bad email", `{"email":"nope","name":"Juan","lastname":"Perez","password":"pass1234"}`, "email"},
		{"short name", `{"email":"a@b.co","name":"Jo","lastname":"Perez","password":"pass1234"}`, "name"},
		{"long lastname", `{"email":"a@b.co","name":"Juan","lastname":"` + strings.Repeat("x", 21) + `","password":"pass1234"}`, "lastname"},
		{"short password", `{"email":"a@b.co","name":"Juan","lastname":"Perez","password":"12345"}`, "password"},
		{"long password", `{"email":"a@b.co","name":"Juan","lastname":"Perez","password":"` + strings.Repeat("p", 21) + `"}`, "password"},
		{"missing email", `{"name":"Juan","lastname":"Perez","password":"pass1234"}`, "email"},
		{"wrong type", `{"email":"a@b.co","name":12,"lastname":"Perez","password":"pass1234"}`, "name"},
		{"empty body", ``, "body"},
		{"broken json", `{"email":`, "body"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var in UserCreate
			verr := decodeErr(t, tc.body, &in)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestUserUpdateChanges(t *testing.T) {
	var in UserUpdate
	require.NoError(t, Decode(strings.NewReader(`{"name":"Juana","is_active":false}`), &in))

	c, err := in.Changes()
	require.NoError(t, err)
	require.NotNil(t, c.Name)
	assert.Equal(t, "Juana", *c.Name)
	require.NotNil(t, c.IsActive)
	assert.False(t, *c.IsActive)
	assert.Nil(t, c.Email)
	assert.Nil(t, c.Lastname)
}

func TestUserUpdateEmpty(t *testing.T) {
	for _, body := range []string{`{}`, `{"email":null}`, `{"password":"ignored"}`} {
		var in UserUpdate
		require.NoError(t, Decode(strings.NewReader(body), &in), body)
		_, err := in.Changes()
		assert.Equal(t, ErrNoData, err, body)
		assert.True(t, errors.Is(err, errors.BadRequest))
	}
}

func TestUserUpdateValidatesSetFields(t *testing.T) {
	var in UserUpdate
	verr := decodeErr(t, `{"email":"not-an-email","name":""}`, &in)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "name")
}

func TestUserResponseHasNoPassword(t *testing.T) {
	resp := NewUserResponse(&model.User{
		ID:             3,
		Email:          "juan@example.com",
		HashedPassword: "secret-hash",
		IsActive:       true,
		CreatedAt:      time.Unix(0, 0).UTC(),
	})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "hashed_password")
	assert.NotContains(t, fields, "password")
	assert.NotContains(t, string(raw), "secret-hash")
	for _, k := range []string{"id", "email", "name", "lastname", "is_active", "created_at", "updated_at"} {
		assert.Contains(t, fields, k)
	}
}

func TestTaskCreateRejects(t *testing.T) {
	for _, tc := range []struct {
		name  string
		body  string
		field string
	}{
		{"short title", `{"title":"abc","description":"long enough","user_id":1}`, "title"},
		{"long title", `{"title":"` + strings.Repeat("t", 21) + `","description":"long enough","user_id":1}`, "title"},
		{"short description", `{"title":"Title","description":"abc","user_id":1}`, "description"},
		{"long description", `{"title":"Title","description":"` + strings.Repeat("d", 256) + `","user_id":1}`, "description"},
		{"zero user", `{"title":"Title","description":"long enough","user_id":0}`, "user_id"},
		{"missing user", `{"title":"Title","description":"long enough"}`, "user_id"},
		{"string user", `{"title":"Title","description":"long enough","user_id":"one"}`, "user_id"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var in TaskCreate
			verr := decodeErr(t, tc.body, &in)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestTaskCreateValid(t *testing.T) {
	var in TaskCreate
	require.NoError(t, Decode(strings.NewReader(`{"title":"Groceries","description":"Milk and bread","user_id":7}`), &in))
	assert.Equal(t, model.NewTask{UserID: 7, Title: "Groceries", Description: "Milk and bread"}, in.NewTask())
}

func TestTaskUpdateChanges(t *testing.T) {
	var in TaskUpdate
	require.NoError(t, Decode(strings.NewReader(`{"complete":true,"user_id":4}`), &in))
	c, err := in.Changes()
	require.NoError(t, err)
	require.NotNil(t, c.UserID)
	assert.Equal(t, uint(4), *c.UserID)
	require.NotNil(t, c.Complete)
	assert.True(t, *c.Complete)
	assert.Nil(t, c.Title)

	var empty TaskUpdate
	require.NoError(t, Decode(strings.NewReader(`{}`), &empty))
	_, err = empty.Changes()
	assert.Equal(t, ErrNoData, err)
}

func TestTaskUpdateValidatesSetFields(t *testing.T) {
	var in TaskUpdate
	verr := decodeErr(t, `{"title":"abc","user_id":-2}`, &in)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "user_id")
}

func TestParseID(t *testing.T) {
	id, err := ParseID("user_id", "12")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	id, err = ParseID("user_id", "5000000000")
	require.NoError(t, err)
	assert.Equal(t, uint(5000000000), id)

	for _, raw := range []string{"0", "-1", "abc", "", "9223372036854775808"} {
		_, err := ParseID("user_id", raw)
		assert.True(t, errors.Is(err, errors.NotValid), raw)
	}
}
