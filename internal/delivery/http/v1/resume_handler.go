package v1

import (
	"fmt"
	"io"
	"net/http"

	"go-applicant-tracker/internal/delivery/http/response"
	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ResumeHandler struct {
	resumeUC domain.ResumeUsecase
	maxBytes int64
}

func NewResumeHandler(group *gin.RouterGroup, resumeUC domain.ResumeUsecase, maxBytes int64) {
	handler := &ResumeHandler{resumeUC: resumeUC, maxBytes: maxBytes}

	resumes := group.Group("/resumes")
	{
		resumes.POST("", handler.Upload)
		resumes.GET("/:name", handler.Serve)
		resumes.DELETE("/:name", handler.Delete)
	}
}

// Upload godoc
// @Summary      Upload a resume
// @Description  Accepts a single PDF. file_name is the desired stored name, e.g. Ada_Lovelace_1708273649000.pdf
// @Tags         resumes
// @Accept       multipart/form-data
// @Produce      json
// @Param        file       formData  file    true   "PDF resume"
// @Param        file_name  formData  string  false  "Desired stored file name"
// @Success      201  {object}  response.Response{data=domain.Resume}
// @Failure      400  {object}  response.Response
// @Failure      413  {object}  response.Response
// @Failure      415  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /resumes [post]
// @Security     BearerAuth
func (h *ResumeHandler) Upload(c *gin.Context) {
	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("A PDF file is required in the 'file' field"))
		return
	}
	if fileHeader.Size > h.maxBytes {
		c.Error(apperror.New(http.StatusRequestEntityTooLarge, "File is too large", nil))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.Error(fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		c.Error(fmt.Errorf("read upload: %w", err))
		return
	}

	resume, err := h.resumeUC.Upload(c.Request.Context(), domain.UploadResumeRequest{
		OriginalName: fileHeader.Filename,
		DesiredName:  c.PostForm("file_name"),
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Data:         data,
		ClientIP:     c.ClientIP(),
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Resume uploaded", resume)
}

// Serve godoc
// @Summary      Fetch a stored resume
// @Description  Streams the PDF inline for preview, or as an attachment with download=1
// @Tags         resumes
// @Produce      application/pdf
// @Param        name      path   string  true   "Stored resume name"
// @Param        download  query  bool    false  "Force download"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /resumes/{name} [get]
// @Security     BearerAuth
func (h *ResumeHandler) Serve(c *gin.Context) {
	name := c.Param("name")
	rc, err := h.resumeUC.Open(c.Request.Context(), name)
	if err != nil {
		c.Error(err)
		return
	}
	defer rc.Close()

	disposition := "inline"
	if c.Query("download") == "1" || c.Query("download") == "true" {
		disposition = "attachment"
	}

	c.DataFromReader(http.StatusOK, -1, "application/pdf", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`%s; filename="%s"`, disposition, name),
		"Cache-Control":       "private, max-age=300",
	})
}

// Delete godoc
// @Summary      Delete a stored resume
// @Description  Removes a resume that no applicant was saved with, e.g. after a failed create
// @Tags         resumes
// @Produce      json
// @Param        name  path  string  true  "Stored resume name"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /resumes/{name} [delete]
// @Security     BearerAuth
func (h *ResumeHandler) Delete(c *gin.Context) {
	if err := h.resumeUC.Delete(c.Request.Context(), c.Param("name")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resume deleted", nil)
}
