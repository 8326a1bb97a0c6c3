package v1

import (
	"net/http"
	"time"

	"go-applicant-tracker/config"
	"go-applicant-tracker/internal/delivery/http/middleware"
	"go-applicant-tracker/internal/delivery/http/response"
	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/internal/usecase"
	"go-applicant-tracker/pkg/auth"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ApplicantUC domain.ApplicantUsecase
	ResumeUC    domain.ResumeUsecase
	HealthUC    usecase.HealthUsecase
	Verifier    *auth.Verifier
	Redis       *goredis.Client
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.IsProduction()))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		status, ok := deps.HealthUC.Check(c.Request.Context())
		if !ok {
			response.Error(c, http.StatusServiceUnavailable, "Dependencies unavailable", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := v1.Group("")
	api.Use(middleware.SecurityHeadersMiddleware("/v1/resumes/", cfg.FrontendURL))
	api.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(
		deps.Redis, cfg.RateLimitGlobal, time.Duration(cfg.RateLimitWindowSeconds)*time.Second)))
	api.Use(middleware.AuthMiddleware(deps.Verifier))
	{
		NewApplicantHandler(api, deps.ApplicantUC)
		NewResumeHandler(api, deps.ResumeUC, cfg.MaxUploadBytes())
	}

	return r
}
