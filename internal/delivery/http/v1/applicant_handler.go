package v1

import (
	"fmt"
	"net/http"

	"go-applicant-tracker/internal/consensus"
	"go-applicant-tracker/internal/delivery/http/response"
	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/internal/export"
	"go-applicant-tracker/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ApplicantHandler struct {
	applicantUC domain.ApplicantUsecase
}

func NewApplicantHandler(group *gin.RouterGroup, applicantUC domain.ApplicantUsecase) {
	handler := &ApplicantHandler{applicantUC: applicantUC}

	group.GET("/reviewers", handler.Reviewers)

	applicants := group.Group("/applicants")
	{
		applicants.GET("", handler.List)
		applicants.POST("", handler.Create)
		applicants.DELETE("", handler.Clear)
		applicants.GET("/stats", handler.Stats)
		applicants.GET("/export", handler.Export)
		applicants.POST("/bulk-delete", handler.BulkDelete)
		applicants.GET("/:id", handler.Get)
		applicants.DELETE("/:id", handler.Delete)
		applicants.GET("/:id/consensus", handler.Consensus)
		applicants.POST("/:id/comments", handler.AddComment)
	}
}

// ApplicantDetail is an applicant with its aggregated decisions and the
// one-per-reviewer comment list shown on the detail page
type ApplicantDetail struct {
	domain.Applicant
	LatestComments []domain.Comment         `json:"latest_comments"`
	Consensus      domain.ConsensusSummary `json:"consensus"`
}

// Reviewers godoc
// @Summary      Reviewer and decision options
// @Tags         applicants
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ReviewerOptions}
// @Router       /reviewers [get]
func (h *ApplicantHandler) Reviewers(c *gin.Context) {
	response.Success(c, http.StatusOK, "Reviewer options", domain.ReviewerOptions{
		Reviewers: domain.Reviewers,
		Decisions: domain.Decisions,
	})
}

// List godoc
// @Summary      List applicants
// @Description  Lists applicants with their full comment history, oldest first
// @Tags         applicants
// @Produce      json
// @Param        search  query     string  false  "Case-insensitive name filter"
// @Success      200     {object}  response.Response{data=[]domain.Applicant}
// @Router       /applicants [get]
// @Security     BearerAuth
func (h *ApplicantHandler) List(c *gin.Context) {
	applicants, err := h.applicantUC.List(c.Request.Context(), domain.ApplicantFilter{Search: c.Query("search")})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applicants retrieved", applicants)
}

// Get godoc
// @Summary      Get applicant
// @Tags         applicants
// @Produce      json
// @Param        id   path      string  true  "Applicant ID"
// @Success      200  {object}  response.Response{data=ApplicantDetail}
// @Failure      404  {object}  response.Response
// @Router       /applicants/{id} [get]
// @Security     BearerAuth
func (h *ApplicantHandler) Get(c *gin.Context) {
	a, err := h.applicantUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applicant retrieved", ApplicantDetail{
		Applicant:      *a,
		LatestComments: consensus.LatestComments(a.Comments),
		Consensus:      consensus.Summarize(*a),
	})
}

// Create godoc
// @Summary      Create applicant
// @Description  Upload the resume first through POST /resumes and pass its path and name here
// @Tags         applicants
// @Accept       json
// @Produce      json
// @Param        applicant  body      domain.CreateApplicantRequest  true  "Applicant"
// @Success      201        {object}  response.Response{data=domain.Applicant}
// @Failure      400        {object}  response.Response
// @Router       /applicants [post]
// @Security     BearerAuth
func (h *ApplicantHandler) Create(c *gin.Context) {
	var req domain.CreateApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	a, err := h.applicantUC.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Applicant added successfully!", a)
}

// Delete godoc
// @Summary      Delete applicant
// @Tags         applicants
// @Param        id   path      string  true  "Applicant ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /applicants/{id} [delete]
// @Security     BearerAuth
func (h *ApplicantHandler) Delete(c *gin.Context) {
	if err := h.applicantUC.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applicant deleted", nil)
}

// BulkDelete godoc
// @Summary      Delete several applicants
// @Tags         applicants
// @Accept       json
// @Produce      json
// @Param        ids  body      domain.BulkDeleteRequest  true  "Applicant IDs"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /applicants/bulk-delete [post]
// @Security     BearerAuth
func (h *ApplicantHandler) BulkDelete(c *gin.Context) {
	var req domain.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	n, err := h.applicantUC.DeleteMany(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, fmt.Sprintf("%d applicants deleted", n), gin.H{"deleted": n})
}

// Clear godoc
// @Summary      Delete every applicant
// @Tags         applicants
// @Success      200  {object}  response.Response
// @Router       /applicants [delete]
// @Security     BearerAuth
func (h *ApplicantHandler) Clear(c *gin.Context) {
	n, err := h.applicantUC.Clear(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "All applicants cleared", gin.H{"deleted": n})
}

// AddComment godoc
// @Summary      Add a reviewer comment
// @Description  Appends a decision. Earlier comments by the same reviewer are kept in history.
// @Tags         applicants
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Applicant ID"
// @Param        comment  body      domain.AddCommentRequest  true  "Comment"
// @Success      201      {object}  response.Response{data=domain.Comment}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /applicants/{id}/comments [post]
// @Security     BearerAuth
func (h *ApplicantHandler) AddComment(c *gin.Context) {
	var req domain.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	comment, err := h.applicantUC.AddComment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Comment added", comment)
}

// Consensus godoc
// @Summary      Aggregated reviewer decisions
// @Tags         applicants
// @Produce      json
// @Param        id   path      string  true  "Applicant ID"
// @Success      200  {object}  response.Response{data=domain.ConsensusSummary}
// @Failure      404  {object}  response.Response
// @Router       /applicants/{id}/consensus [get]
// @Security     BearerAuth
func (h *ApplicantHandler) Consensus(c *gin.Context) {
	summary, err := h.applicantUC.Consensus(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Consensus computed", summary)
}

// Stats godoc
// @Summary      Applicant totals
// @Tags         applicants
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ApplicantStats}
// @Router       /applicants/stats [get]
// @Security     BearerAuth
func (h *ApplicantHandler) Stats(c *gin.Context) {
	stats, err := h.applicantUC.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Stats retrieved", stats)
}

// Export godoc
// @Summary      Export applicants
// @Tags         applicants
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format  query  string  false  "csv or xlsx"  Enums(csv, xlsx)
// @Success      200
// @Failure      404  {object}  response.Response  "No applicants to export"
// @Router       /applicants/export [get]
// @Security     BearerAuth
func (h *ApplicantHandler) Export(c *gin.Context) {
	format := domain.ExportFormat(c.DefaultQuery("format", string(domain.ExportCSV)))
	data, filename, err := h.applicantUC.Export(c.Request.Context(), format)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType(format), data)
}
