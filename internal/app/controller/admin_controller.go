package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/app/service"
	apperrors "storefront-backend/internal/errors"
	"storefront-backend/internal/middleware"
)

type AdminController struct {
	adminService service.AdminService
}

func NewAdminController(adminService service.AdminService) *AdminController {
	return &AdminController{
		adminService: adminService,
	}
}

// GetDashboard returns aggregate store statistics
// GET /api/v1/admin/dashboard
func (ctrl *AdminController) GetDashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	dashboard, err := ctrl.adminService.GetDashboard()
	if err != nil {
		log.Error("Failed to build dashboard", err, nil)
		apperrors.InternalError(c, "Failed to fetch dashboard data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dashboard": dashboard,
	})
}

// ExportSalesReport streams the sales report as an xlsx download
// GET /api/v1/admin/reports/sales
func (ctrl *AdminController) ExportSalesReport(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := ctrl.adminService.ExportSalesReport()
	if err != nil {
		log.Error("Failed to export sales report", err, nil)
		apperrors.InternalError(c, "Failed to export sales report")
		return
	}

	filename := fmt.Sprintf("sales-report-%s.xlsx", time.Now().Format("2006-01-02"))

	log.Info("Sales report exported", map[string]interface{}{
		"filename": filename,
		"bytes":    len(data),
	})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
