package controllers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courseplan/backend/models"
	"courseplan/backend/storage"
)

func TestAddCourseDuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	first := env.doForm(t, "POST", "/admin", token, "action=add_course&course_name=Math")
	require.Equal(t, fiber.StatusOK, first.StatusCode)

	second := env.doForm(t, "POST", "/admin", token, "action=add_course&course_name=Math")
	assert.Equal(t, fiber.StatusBadRequest, second.StatusCode)

	var count int64
	env.DB.Model(&models.Course{}).Where("name = ?", "Math").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAddCourseBlankRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	resp := env.doForm(t, "POST", "/admin", token, "action=add_course&course_name=+++")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	env.DB.Model(&models.Course{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestTopicNameUniquePerCourse(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	mathCourse, _ := env.seedCatalog(t, "Math", "Algebra")
	physicsCourse := models.Course{Name: "Physics"}
	require.NoError(t, env.DB.Create(&physicsCourse).Error)

	// Same name in the same course is rejected.
	dup := env.doForm(t, "POST", "/admin", token,
		fmt.Sprintf("action=add_topic&topic_name=Algebra&course_id=%d", mathCourse.ID))
	assert.Equal(t, fiber.StatusBadRequest, dup.StatusCode)

	// Same name in another course is fine.
	ok := env.doForm(t, "POST", "/admin", token,
		fmt.Sprintf("action=add_topic&topic_name=Algebra&course_id=%d", physicsCourse.ID))
	assert.Equal(t, fiber.StatusOK, ok.StatusCode)
}

func TestAddUserAccessDaysValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	cases := []struct {
		days   string
		status int
	}{
		{"30", fiber.StatusOK},
		{"", fiber.StatusOK},
		{"abc", fiber.StatusBadRequest},
		{"-5", fiber.StatusBadRequest},
		{"0", fiber.StatusBadRequest},
		{"99999", fiber.StatusBadRequest},
	}

	for i, tc := range cases {
		form := fmt.Sprintf("action=add_user&new_username=user%d&new_password=secret&access_days=%s", i, tc.days)
		resp := env.doForm(t, "POST", "/admin", token, form)
		assert.Equal(t, tc.status, resp.StatusCode, "access_days=%q", tc.days)
	}

	// Only the valid cases created rows (plus the seeded admin).
	var count int64
	env.DB.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(3), count)

	// A duration sets the expiration, an empty duration leaves it off.
	var withExpiry models.User
	require.NoError(t, env.DB.Where("username = ?", "user0").First(&withExpiry).Error)
	assert.NotNil(t, withExpiry.ExpireDate)

	var permanent models.User
	require.NoError(t, env.DB.Where("username = ?", "user1").First(&permanent).Error)
	assert.Nil(t, permanent.ExpireDate)
}

func TestAddUserRequiresPrimaryAdmin(t *testing.T) {
	env := newTestEnv(t)
	secondAdmin := env.createUser(t, "helper", "password123", true, nil)

	resp := env.doForm(t, "POST", "/admin", env.token(t, secondAdmin),
		"action=add_user&new_username=sneaky&new_password=secret")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDeleteCourseCascades(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	user := env.createUser(t, "student", "password123", false, nil)

	course, topic := env.seedCatalog(t, "Math", "Algebra")
	subTopic := env.seedSubTopic(t, topic, "Linear equations")

	// Hang every kind of child off the sub-topic.
	quiz := models.Quiz{SubTopicID: subTopic.ID, Title: "Check"}
	require.NoError(t, env.DB.Create(&quiz).Error)
	question := models.Question{QuizID: quiz.ID, Text: "2+2?"}
	require.NoError(t, env.DB.Create(&question).Error)
	require.NoError(t, env.DB.Create(&models.Answer{QuestionID: question.ID, Text: "4", IsCorrect: true}).Error)
	require.NoError(t, env.DB.Create(&models.QuizAttempt{UserID: user.ID, QuizID: quiz.ID, Score: 100}).Error)
	require.NoError(t, env.DB.Create(&models.Progress{UserID: user.ID, SubTopicID: subTopic.ID}).Error)
	comment := models.Comment{UserID: user.ID, SubTopicID: subTopic.ID, Content: "Nice"}
	require.NoError(t, env.DB.Create(&comment).Error)

	storedName := storage.StoredName("notes.pdf")
	require.NoError(t, os.WriteFile(env.Store.Path(storedName), []byte("pdf"), 0o644))
	require.NoError(t, env.DB.Create(&models.Material{
		SubTopicID:   subTopic.ID,
		StoredName:   storedName,
		OriginalName: "notes.pdf",
	}).Error)

	resp := env.doForm(t, "GET", fmt.Sprintf("/admin?delete_type=course&id=%d", course.ID), token, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for name, model := range map[string]interface{}{
		"courses":   &models.Course{},
		"topics":    &models.Topic{},
		"subtopics": &models.SubTopic{},
		"materials": &models.Material{},
		"quizzes":   &models.Quiz{},
		"questions": &models.Question{},
		"answers":   &models.Answer{},
		"attempts":  &models.QuizAttempt{},
		"progress":  &models.Progress{},
		"comments":  &models.Comment{},
	} {
		var count int64
		env.DB.Model(model).Count(&count)
		assert.Equal(t, int64(0), count, "expected no %s left", name)
	}

	_, err := os.Stat(env.Store.Path(storedName))
	assert.True(t, os.IsNotExist(err), "material file should be removed")
}

func TestDeleteUnknownIDNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	resp := env.doForm(t, "GET", "/admin?delete_type=course&id=9999", token, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPrimaryAdminCannotBeDeleted(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	var admin models.User
	require.NoError(t, env.DB.Where("username = ?", models.PrimaryAdminUsername).First(&admin).Error)

	resp := env.doForm(t, "GET", fmt.Sprintf("/admin?delete_type=user&id=%d", admin.ID), token, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var count int64
	env.DB.Model(&models.User{}).Where("username = ?", models.PrimaryAdminUsername).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteUserRequiresPrimaryAdmin(t *testing.T) {
	env := newTestEnv(t)
	secondAdmin := env.createUser(t, "helper", "password123", true, nil)
	victim := env.createUser(t, "victim", "password123", false, nil)

	resp := env.doForm(t, "GET",
		fmt.Sprintf("/admin?delete_type=user&id=%d", victim.ID), env.token(t, secondAdmin), "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestUploadMaterial(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	_, topic := env.seedCatalog(t, "Math", "Algebra")
	subTopic := env.seedSubTopic(t, topic, "Linear equations")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("action", "upload_material"))
	require.NoError(t, writer.WriteField("subtopic_id", fmt.Sprint(subTopic.ID)))
	part, err := writer.CreateFormFile("file", "lecture.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/admin", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", token)
	resp, err := env.App.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var material models.Material
	require.NoError(t, env.DB.Where("sub_topic_id = ?", subTopic.ID).First(&material).Error)
	assert.Equal(t, "lecture.pdf", material.OriginalName)
	assert.NotEqual(t, "lecture.pdf", material.StoredName)

	_, err = os.Stat(env.Store.Path(material.StoredName))
	assert.NoError(t, err, "uploaded file should exist on disk")
}

func TestUploadMaterialRejectsBadExtension(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	_, topic := env.seedCatalog(t, "Math", "Algebra")
	subTopic := env.seedSubTopic(t, topic, "Linear equations")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("action", "upload_material"))
	require.NoError(t, writer.WriteField("subtopic_id", fmt.Sprint(subTopic.ID)))
	part, err := writer.CreateFormFile("file", "malware.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/admin", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", token)
	resp, err := env.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	env.DB.Model(&models.Material{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestEditCourseRename(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	course, _ := env.seedCatalog(t, "Math", "Algebra")
	other := models.Course{Name: "Physics"}
	require.NoError(t, env.DB.Create(&other).Error)

	// Renaming onto an existing course name is rejected.
	clash := env.doJSON(t, "POST", fmt.Sprintf("/admin/edit_course/%d", course.ID), token,
		map[string]string{"name": "Physics"})
	assert.Equal(t, fiber.StatusBadRequest, clash.StatusCode)

	ok := env.doJSON(t, "POST", fmt.Sprintf("/admin/edit_course/%d", course.ID), token,
		map[string]string{"name": "Mathematics"})
	require.Equal(t, fiber.StatusOK, ok.StatusCode)

	var renamed models.Course
	require.NoError(t, env.DB.First(&renamed, course.ID).Error)
	assert.Equal(t, "Mathematics", renamed.Name)
}

func TestAdminDashboard(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	expired := time.Now().UTC().Add(-48 * time.Hour)
	future := time.Now().UTC().AddDate(0, 0, 30)
	env.createUser(t, "lapsed", "password123", false, &expired)
	env.createUser(t, "forever", "password123", false, nil)
	student := env.createUser(t, "student", "password123", false, &future)

	_, mathTopic := env.seedCatalog(t, "Math", "Algebra")
	mathSub := env.seedSubTopic(t, mathTopic, "Linear equations")
	env.seedSubTopic(t, mathTopic, "Quadratic equations")

	_, physicsTopic := env.seedCatalog(t, "Physics", "Mechanics")
	kinematics := env.seedSubTopic(t, physicsTopic, "Kinematics")
	dynamics := env.seedSubTopic(t, physicsTopic, "Dynamics")

	// Physics leads with two completions to Math's one.
	require.NoError(t, env.DB.Create(&models.Progress{UserID: student.ID, SubTopicID: kinematics.ID}).Error)
	require.NoError(t, env.DB.Create(&models.Progress{UserID: student.ID, SubTopicID: dynamics.ID}).Error)
	require.NoError(t, env.DB.Create(&models.Progress{UserID: student.ID, SubTopicID: mathSub.ID}).Error)

	resp := env.doJSON(t, "GET", "/admin", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	stats := result["stats"].(map[string]interface{})
	assert.Equal(t, float64(4), stats["total_users"])
	// Only an unexpired dated account counts as active; permanent and
	// lapsed accounts do not.
	assert.Equal(t, float64(1), stats["active_users"])
	assert.Equal(t, float64(2), stats["courses"])
	assert.Equal(t, float64(2), stats["topics"])
	assert.Equal(t, float64(4), stats["subtopics"])

	chart := result["chart"].(map[string]interface{})
	labels := chart["labels"].([]interface{})
	values := chart["values"].([]interface{})
	require.Len(t, labels, 2)
	assert.Equal(t, "Physics", labels[0])
	assert.Equal(t, "Math", labels[1])
	assert.Equal(t, float64(2), values[0])
	assert.Equal(t, float64(1), values[1])
}

func TestDeleteMaterialStorageFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	_, topic := env.seedCatalog(t, "Math", "Algebra")
	subTopic := env.seedSubTopic(t, topic, "Linear equations")

	// A non-empty directory in the file's place makes removal fail.
	storedName := storage.StoredName("notes.pdf")
	require.NoError(t, os.Mkdir(env.Store.Path(storedName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.Store.Path(storedName), "pin"), []byte("x"), 0o644))

	material := models.Material{
		SubTopicID:   subTopic.ID,
		StoredName:   storedName,
		OriginalName: "notes.pdf",
	}
	require.NoError(t, env.DB.Create(&material).Error)

	resp := env.doForm(t, "GET", fmt.Sprintf("/admin?delete_type=material&id=%d", material.ID), token, "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	// The row delete rolled back with the failed file removal.
	var count int64
	env.DB.Model(&models.Material{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
