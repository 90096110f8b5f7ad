package folioapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
)

// handleBlogCreate ingests a new post from a JSON or multipart body:
// image resolution, field normalization, validation, reading-time
// derivation, then persistence.
func (a *App) handleBlogCreate(c echo.Context) error {
	req, apiErr := decodeRequest(c, "file")
	if apiErr != nil {
		return apiErr
	}
	imageURL, apiErr := a.resolveImage(c, req, "blog-images", "imageUrl")
	if apiErr != nil {
		return apiErr
	}
	post, apiErr := buildBlogPost(req, imageURL)
	if apiErr != nil {
		return apiErr
	}
	saved, err := a.Store.CreateBlog(c.Request().Context(), post)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}

func (a *App) handleBlogList(c echo.Context) error {
	posts, err := a.Store.ListBlogs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleBlogGet(c echo.Context) error {
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return badRequest("Invalid blog ID")
	}
	post, err := a.Store.GetBlog(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Blog not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleBlogUpdate(c echo.Context) error {
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return badRequest("Invalid blog ID")
	}
	req, apiErr := decodeRequest(c, "file")
	if apiErr != nil {
		return apiErr
	}

	set := bson.M{}
	if req.file != nil || req.has("imageUrl") {
		imageURL, apiErr := a.resolveImage(c, req, "blog-images", "imageUrl")
		if apiErr != nil {
			return apiErr
		}
		set["imageUrl"] = imageURL
	}
	if apiErr := buildBlogUpdate(req, set); apiErr != nil {
		return apiErr
	}

	updated, err := a.Store.UpdateBlog(c.Request().Context(), id, set)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Blog not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleBlogDelete(c echo.Context) error {
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return badRequest("Invalid blog ID")
	}
	if err := a.Store.DeleteBlog(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Blog not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Blog deleted successfully"})
}

// buildBlogPost assembles a post from a decoded create request.
// Validation failures enumerate every missing or invalid field.
func buildBlogPost(req *request, imageURL string) (BlogPost, *Error) {
	post := BlogPost{
		Title:    strings.TrimSpace(req.text("title")),
		Excerpt:  strings.TrimSpace(req.text("excerpt")),
		Content:  req.text("content"),
		Tags:     normalizeTags(req.field("tags")),
		ImageURL: imageURL,
	}
	dateRaw := strings.TrimSpace(req.text("publishDate"))
	if dateRaw != "" {
		if t, ok := parseDate(dateRaw); ok {
			post.PublishDate = t
		}
	}
	if details := validateBlogPost(post, dateRaw); len(details) > 0 {
		return BlogPost{}, badRequest("Validation failed", details...)
	}
	post.ReadTime = ReadTime(post.Content)
	return post, nil
}

// buildBlogUpdate merges the provided fields into a $set document,
// re-running normalization for each and re-deriving readTime whenever
// content changes. Required fields cannot be blanked out.
func buildBlogUpdate(req *request, set bson.M) *Error {
	var details []string
	if req.has("title") {
		if v := strings.TrimSpace(req.text("title")); v != "" {
			set["title"] = v
		} else {
			details = append(details, "title is required")
		}
	}
	if req.has("excerpt") {
		if v := strings.TrimSpace(req.text("excerpt")); v != "" {
			set["excerpt"] = v
		} else {
			details = append(details, "excerpt is required")
		}
	}
	if req.has("content") {
		v := req.text("content")
		if strings.TrimSpace(v) == "" {
			details = append(details, "content is required")
		} else {
			set["content"] = v
			set["readTime"] = ReadTime(v)
		}
	}
	if req.has("publishDate") {
		raw := strings.TrimSpace(req.text("publishDate"))
		t, ok := parseDate(raw)
		switch {
		case raw == "":
			details = append(details, "publishDate is required")
		case !ok:
			details = append(details, "publishDate must be a valid date")
		default:
			set["publishDate"] = t
		}
	}
	if req.has("tags") {
		set["tags"] = normalizeTags(req.field("tags"))
	}
	if req.has("likes") {
		if n, ok := req.field("likes").Int(); ok {
			set["likes"] = n
		} else {
			details = append(details, "likes must be an integer")
		}
	}
	if req.has("comments") {
		if n, ok := req.field("comments").Int(); ok {
			set["comments"] = n
		} else {
			details = append(details, "comments must be an integer")
		}
	}
	if len(details) > 0 {
		return badRequest("Validation failed", details...)
	}
	return nil
}
