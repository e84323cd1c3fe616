package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shiv90154/Lms-sub002/backend/config"
	"github.com/shiv90154/Lms-sub002/backend/models"
	"github.com/shiv90154/Lms-sub002/backend/utils"
)

// ContentController serves current affairs and the blog.
type ContentController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewContentController(db *gorm.DB, cfg *config.Config) *ContentController {
	return &ContentController{DB: db, Cfg: cfg}
}

func (cc *ContentController) GetCurrentAffairs(c *fiber.Ctx) error {
	category := c.Query("category")
	month := c.Query("month") // YYYY-MM
	date := c.Query("date")   // YYYY-MM-DD

	query := cc.DB.Model(&models.CurrentAffair{}).Order("published_on DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		}
		query = query.Where("published_on >= ? AND published_on < ?", day, day.AddDate(0, 0, 1))
	} else if month != "" {
		first, err := time.Parse("2006-01", month)
		if err != nil {
			return utils.BadRequest(c, "Invalid month, expected YYYY-MM")
		}
		query = query.Where("published_on >= ? AND published_on < ?", first, first.AddDate(0, 1, 0))
	}

	var affairs []models.CurrentAffair
	if err := query.Find(&affairs).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, affairs)
}

func (cc *ContentController) CreateCurrentAffair(c *fiber.Ctx) error {
	var input struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		Category    string `json:"category"`
		PublishedOn string `json:"published_on"` // YYYY-MM-DD, today when empty
		Source      string `json:"source"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	publishedOn := time.Now()
	if input.PublishedOn != "" {
		day, err := time.Parse("2006-01-02", input.PublishedOn)
		if err != nil {
			return utils.BadRequest(c, "Invalid published_on, expected YYYY-MM-DD")
		}
		publishedOn = day
	}

	affair := models.CurrentAffair{
		Title:       input.Title,
		Content:     input.Content,
		Category:    input.Category,
		PublishedOn: publishedOn,
		Source:      input.Source,
	}

	if err := cc.DB.Create(&affair).Error; err != nil {
		return utils.InternalServerError(c, "Could not create current affair")
	}

	return utils.Created(c, affair)
}

func (cc *ContentController) UpdateCurrentAffair(c *fiber.Ctx) error {
	affairID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid ID")
	}

	var affair models.CurrentAffair
	if err := cc.DB.First(&affair, affairID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Current affair not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Title       *string `json:"title"`
		Content     *string `json:"content"`
		Category    *string `json:"category"`
		PublishedOn *string `json:"published_on"` // YYYY-MM-DD
		Source      *string `json:"source"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return utils.BadRequest(c, "Title cannot be empty")
		}
		affair.Title = *input.Title
	}
	if input.Content != nil {
		affair.Content = *input.Content
	}
	if input.Category != nil {
		affair.Category = *input.Category
	}
	if input.Source != nil {
		affair.Source = *input.Source
	}
	if input.PublishedOn != nil {
		day, err := time.Parse("2006-01-02", *input.PublishedOn)
		if err != nil {
			return utils.BadRequest(c, "Invalid published_on, expected YYYY-MM-DD")
		}
		affair.PublishedOn = day
	}

	if err := cc.DB.Save(&affair).Error; err != nil {
		return utils.InternalServerError(c, "Could not update current affair")
	}

	return utils.Success(c, fiber.StatusOK, affair)
}

func (cc *ContentController) DeleteCurrentAffair(c *fiber.Ctx) error {
	affairID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid ID")
	}

	result := cc.DB.Delete(&models.CurrentAffair{}, affairID)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not delete")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Current affair not found")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Deleted"})
}

// Blog.

func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

func (cc *ContentController) GetBlogPosts(c *fiber.Ctx) error {
	tag := c.Query("tag")

	query := cc.DB.Model(&models.BlogPost{}).
		Where("is_published = ?", true).
		Order("published_at DESC")
	if tag != "" {
		query = query.Where("tags LIKE ?", "%"+tag+"%")
	}

	var posts []models.BlogPost
	if err := query.Find(&posts).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(posts))
	for _, post := range posts {
		result = append(result, fiber.Map{
			"id":           post.ID,
			"title":        post.Title,
			"slug":         post.Slug,
			"excerpt":      post.Excerpt,
			"tags":         post.Tags,
			"cover_url":    post.CoverURL,
			"published_at": post.PublishedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

func (cc *ContentController) GetBlogPostBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var post models.BlogPost
	if err := cc.DB.Where("slug = ? AND is_published = ?", slug, true).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Post not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var comments []models.BlogComment
	cc.DB.Where("blog_post_id = ?", post.ID).Order("created_at").Find(&comments)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"post":     post,
		"comments": comments,
	})
}

func (cc *ContentController) AddBlogComment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	postID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	var post models.BlogPost
	if err := cc.DB.Where("id = ? AND is_published = ?", postID, true).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Post not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if strings.TrimSpace(input.Text) == "" {
		return utils.BadRequest(c, "Comment text is required")
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	comment := models.BlogComment{
		BlogPostID: post.ID,
		UserID:     userID,
		UserName:   user.Username,
		Text:       input.Text,
	}
	if err := cc.DB.Create(&comment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create comment")
	}

	return utils.Created(c, comment)
}

func (cc *ContentController) CreateBlogPost(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		Excerpt     string `json:"excerpt"`
		Tags        string `json:"tags"`
		CoverURL    string `json:"cover_url"`
		IsPublished bool   `json:"is_published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	post := models.BlogPost{
		Title:       input.Title,
		Slug:        slugify(input.Title),
		Content:     input.Content,
		Excerpt:     input.Excerpt,
		Tags:        input.Tags,
		CoverURL:    input.CoverURL,
		AuthorID:    userID,
		IsPublished: input.IsPublished,
	}
	if input.IsPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := cc.DB.Create(&post).Error; err != nil {
		return utils.Conflict(c, "A post with this slug already exists")
	}

	return utils.Created(c, post)
}

func (cc *ContentController) UpdateBlogPost(c *fiber.Ctx) error {
	postID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	var post models.BlogPost
	if err := cc.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Post not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Title       *string `json:"title"`
		Content     *string `json:"content"`
		Excerpt     *string `json:"excerpt"`
		Tags        *string `json:"tags"`
		CoverURL    *string `json:"cover_url"`
		IsPublished *bool   `json:"is_published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		post.Title = *input.Title
		post.Slug = slugify(*input.Title)
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.Excerpt != nil {
		post.Excerpt = *input.Excerpt
	}
	if input.Tags != nil {
		post.Tags = *input.Tags
	}
	if input.CoverURL != nil {
		post.CoverURL = *input.CoverURL
	}
	if input.IsPublished != nil {
		if *input.IsPublished && !post.IsPublished {
			now := time.Now()
			post.PublishedAt = &now
		}
		post.IsPublished = *input.IsPublished
	}

	if err := cc.DB.Save(&post).Error; err != nil {
		return utils.InternalServerError(c, "Could not update post")
	}

	return utils.Success(c, fiber.StatusOK, post)
}

// DeleteBlogPost removes the post and its comments.
func (cc *ContentController) DeleteBlogPost(c *fiber.Ctx) error {
	postID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	var post models.BlogPost
	if err := cc.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Post not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_post_id = ?", post.ID).Delete(&models.BlogComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	}); err != nil {
		return utils.InternalServerError(c, "Could not delete post")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Deleted"})
}
