package controllers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courseplan/backend/models"
)

func TestMarkCompletedToggles(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "student", "password123", false, nil)
	token := env.token(t, user)
	_, topic := env.seedCatalog(t, "Math", "Algebra")
	subTopic := env.seedSubTopic(t, topic, "Linear equations")

	body := map[string]uint{"subtopic_id": subTopic.ID}

	first := env.doJSON(t, "POST", "/mark_completed", token, body)
	require.Equal(t, fiber.StatusOK, first.StatusCode)
	assert.Equal(t, "marked", decodeBody(t, first)["status"])

	var count int64
	env.DB.Model(&models.Progress{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// Second toggle removes the mark again.
	second := env.doJSON(t, "POST", "/mark_completed", token, body)
	require.Equal(t, fiber.StatusOK, second.StatusCode)
	assert.Equal(t, "removed", decodeBody(t, second)["status"])

	env.DB.Model(&models.Progress{}).Count(&count)
	assert.Zero(t, count)
}

func TestMarkCompletedUnknownSubTopic(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "student", "password123", false, nil)

	resp := env.doJSON(t, "POST", "/mark_completed", env.token(t, user),
		map[string]uint{"subtopic_id": 4242})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProgressUniquePerUserAndSubTopic(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "student", "password123", false, nil)
	_, topic := env.seedCatalog(t, "Math", "Algebra")
	subTopic := env.seedSubTopic(t, topic, "Linear equations")

	require.NoError(t, env.DB.Create(&models.Progress{UserID: user.ID, SubTopicID: subTopic.ID}).Error)

	// A concurrent duplicate insert must fail on the constraint, not
	// create a second row.
	err := env.DB.Create(&models.Progress{UserID: user.ID, SubTopicID: subTopic.ID}).Error
	assert.Error(t, err)

	var count int64
	env.DB.Model(&models.Progress{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
