package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/shipboard-io/shipboard/internal/modules/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testSlugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func setupProjectRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return testSlugPattern.MatchString(fl.Field().String())
		})
	}
	return gin.New()
}

func withUser(user *model.User, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", user)
		h(c)
	}
}

func TestProjectHandler_CreateProject(t *testing.T) {
	user := &model.User{ID: uuid.New()}

	tests := []struct {
		name           string
		body           string
		setup          func(*MockProjectService)
		expectedStatus int
	}{
		{
			name: "successful creation",
			body: `{"name":"Widget","slug":"widget"}`,
			setup: func(svc *MockProjectService) {
				svc.On("Create", mock.Anything, mock.Anything).
					Return(&model.Project{ID: uuid.New(), Name: "Widget", Slug: "widget"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "slug already taken",
			body: `{"name":"Widget","slug":"widget"}`,
			setup: func(svc *MockProjectService) {
				svc.On("Create", mock.Anything, mock.Anything).
					Return(nil, service.ErrSlugTaken)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing name",
			body:           `{"slug":"widget"}`,
			setup:          func(svc *MockProjectService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "uppercase slug is rejected",
			body:           `{"name":"Widget","slug":"My-Widget"}`,
			setup:          func(svc *MockProjectService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "slug with spaces is rejected",
			body:           `{"name":"Widget","slug":"my widget"}`,
			setup:          func(svc *MockProjectService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockProjectService{}
			tt.setup(mockService)

			handler := NewProjectHandler(mockService)
			router := setupProjectRouter()
			router.POST("/projects", withUser(user, handler.CreateProject))

			req := httptest.NewRequest("POST", "/projects", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestProjectHandler_GetProject(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	projectID := uuid.New()

	tests := []struct {
		name           string
		param          string
		setup          func(*MockProjectService)
		expectedStatus int
	}{
		{
			name:  "found",
			param: projectID.String(),
			setup: func(svc *MockProjectService) {
				svc.On("Get", mock.Anything, user.ID, projectID).
					Return(&model.Project{ID: projectID, UserID: user.ID}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "not found",
			param: projectID.String(),
			setup: func(svc *MockProjectService) {
				svc.On("Get", mock.Anything, user.ID, projectID).
					Return(nil, service.ErrProjectNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "malformed id",
			param:          "not-a-uuid",
			setup:          func(svc *MockProjectService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockProjectService{}
			tt.setup(mockService)

			handler := NewProjectHandler(mockService)
			router := setupProjectRouter()
			router.GET("/projects/:project_id", withUser(user, handler.GetProject))

			req := httptest.NewRequest("GET", "/projects/"+tt.param, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestProjectHandler_UpdateProject(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	projectID := uuid.New()

	t.Run("forwards only allow-listed fields", func(t *testing.T) {
		mockService := &MockProjectService{}
		var gotInput service.UpdateProjectInput
		mockService.On("Update", mock.Anything, user.ID, projectID, mock.Anything).
			Run(func(args mock.Arguments) {
				gotInput = args.Get(3).(service.UpdateProjectInput)
			}).
			Return(&model.Project{ID: projectID}, nil)

		handler := NewProjectHandler(mockService)
		router := setupProjectRouter()
		router.PATCH("/projects/:project_id", withUser(user, handler.UpdateProject))

		// user_id and slug are not mutable and silently fall away
		body := `{"name":"Renamed","is_public":true,"user_id":"11111111-1111-1111-1111-111111111111","slug":"hijack"}`
		req := httptest.NewRequest("PATCH", "/projects/"+projectID.String(), bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Renamed", *gotInput.Name)
		assert.True(t, *gotInput.IsPublic)
		assert.Nil(t, gotInput.Description)
	})
}
