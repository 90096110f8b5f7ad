package folioapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
)

// handleProjectCreate runs the same pipeline as blog creation; the file
// part and pass-through URL are both named "image" for projects.
func (a *App) handleProjectCreate(c echo.Context) error {
	req, apiErr := decodeRequest(c, "image")
	if apiErr != nil {
		return apiErr
	}
	imageRef, apiErr := a.resolveImage(c, req, "project-images", "image")
	if apiErr != nil {
		return apiErr
	}
	project, apiErr := buildProject(req, imageRef)
	if apiErr != nil {
		return apiErr
	}
	saved, err := a.Store.CreateProject(c.Request().Context(), project)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}

func (a *App) handleProjectList(c echo.Context) error {
	projects, err := a.Store.ListProjects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

func (a *App) handleProjectGet(c echo.Context) error {
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return badRequest("Invalid project ID")
	}
	project, err := a.Store.GetProject(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Project not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, project)
}

func (a *App) handleProjectUpdate(c echo.Context) error {
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return badRequest("Invalid project ID")
	}
	req, apiErr := decodeRequest(c, "image")
	if apiErr != nil {
		return apiErr
	}

	set := bson.M{}
	if req.file != nil {
		imageRef, apiErr := a.resolveImage(c, req, "project-images", "image")
		if apiErr != nil {
			return apiErr
		}
		set["image"] = imageRef
	} else if req.has("image") {
		set["image"] = strings.TrimSpace(req.text("image"))
	}
	if apiErr := buildProjectUpdate(req, set); apiErr != nil {
		return apiErr
	}

	updated, err := a.Store.UpdateProject(c.Request().Context(), id, set)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Project not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleProjectDelete(c echo.Context) error {
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return badRequest("Invalid project ID")
	}
	if err := a.Store.DeleteProject(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Project not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Project deleted successfully"})
}

// buildProject assembles a project from a decoded create request. A
// malformed stats field fails the pipeline before validation runs.
func buildProject(req *request, imageRef string) (Project, *Error) {
	stats, apiErr := normalizeStats(req.field("stats"))
	if apiErr != nil {
		return Project{}, apiErr
	}
	project := Project{
		Title:       strings.TrimSpace(req.text("title")),
		Description: strings.TrimSpace(req.text("description")),
		Image:       imageRef,
		Tags:        normalizeTags(req.field("tags")),
		DemoURL:     strings.TrimSpace(req.text("demoUrl")),
		CodeURL:     strings.TrimSpace(req.text("codeUrl")),
		Featured:    normalizeBool(req.field("featured")),
		Stats: ProjectStats{
			Users:       strings.TrimSpace(stats.Users),
			Performance: strings.TrimSpace(stats.Performance),
			Rating:      strings.TrimSpace(stats.Rating),
		},
	}
	if details := validateProject(project); len(details) > 0 {
		return Project{}, badRequest("Validation failed", details...)
	}
	return project, nil
}

// buildProjectUpdate merges the provided fields into a $set document.
func buildProjectUpdate(req *request, set bson.M) *Error {
	var details []string
	if req.has("title") {
		if v := strings.TrimSpace(req.text("title")); v != "" {
			set["title"] = v
		} else {
			details = append(details, "title is required")
		}
	}
	if req.has("description") {
		if v := strings.TrimSpace(req.text("description")); v != "" {
			set["description"] = v
		} else {
			details = append(details, "description is required")
		}
	}
	if req.has("tags") {
		set["tags"] = normalizeTags(req.field("tags"))
	}
	if req.has("demoUrl") {
		set["demoUrl"] = strings.TrimSpace(req.text("demoUrl"))
	}
	if req.has("codeUrl") {
		set["codeUrl"] = strings.TrimSpace(req.text("codeUrl"))
	}
	if req.has("featured") {
		set["featured"] = normalizeBool(req.field("featured"))
	}
	if req.has("stats") {
		stats, apiErr := normalizeStats(req.field("stats"))
		if apiErr != nil {
			return apiErr
		}
		stats.Users = strings.TrimSpace(stats.Users)
		stats.Performance = strings.TrimSpace(stats.Performance)
		stats.Rating = strings.TrimSpace(stats.Rating)
		if stats.Users == "" {
			details = append(details, "stats.users is required")
		}
		if stats.Performance == "" {
			details = append(details, "stats.performance is required")
		}
		if stats.Rating == "" {
			details = append(details, "stats.rating is required")
		}
		if stats.Users != "" && stats.Performance != "" && stats.Rating != "" {
			set["stats"] = stats
		}
	}
	if len(details) > 0 {
		return badRequest("Validation failed", details...)
	}
	return nil
}
