package service

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/pkg/logger"
)

const lowStockThreshold = 5

// DashboardData is the admin dashboard payload
type DashboardData struct {
	Stats            *repository.DashboardStats `json:"stats"`
	TotalUsers       int64                      `json:"total_users"`
	TotalProducts    int64                      `json:"total_products"`
	LowStockProducts []model.Product            `json:"low_stock_products"`
}

type AdminService interface {
	GetDashboard() (*DashboardData, error)
	ExportSalesReport() ([]byte, error)
}

type adminService struct {
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
}

func NewAdminService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
) AdminService {
	return &adminService{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

func (s *adminService) GetDashboard() (*DashboardData, error) {
	logger.Debug("Collecting admin dashboard data")

	stats, err := s.orderRepo.GetDashboardStats()
	if err != nil {
		logger.Error("Failed to collect order stats", err)
		return nil, err
	}

	totalUsers, err := s.userRepo.Count()
	if err != nil {
		logger.Error("Failed to count users", err)
		return nil, err
	}

	totalProducts, err := s.productRepo.Count()
	if err != nil {
		logger.Error("Failed to count products", err)
		return nil, err
	}

	lowStock, err := s.productRepo.FindLowStock(lowStockThreshold)
	if err != nil {
		logger.Error("Failed to find low stock products", err)
		return nil, err
	}

	return &DashboardData{
		Stats:            stats,
		TotalUsers:       totalUsers,
		TotalProducts:    totalProducts,
		LowStockProducts: lowStock,
	}, nil
}

// ExportSalesReport renders all orders as an xlsx workbook
func (s *adminService) ExportSalesReport() ([]byte, error) {
	logger.Info("Exporting sales report")

	rows, err := s.orderRepo.GetSalesRows()
	if err != nil {
		logger.Error("Failed to collect sales rows", err)
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("Failed to close workbook", err)
		}
	}()

	const sheet = "Sales"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		logger.Debug("Default sheet not removed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	headers := []string{"Order Number", "Customer Email", "Status", "Payment Status", "Items", "Total", "Created At"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.OrderNumber,
			row.CustomerEmail,
			row.Status,
			row.PaymentStatus,
			row.ItemCount,
			row.Total,
			row.CreatedAt,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to render sales workbook", err)
		return nil, err
	}

	logger.Info("Sales report exported", map[string]interface{}{
		"row_count": len(rows),
	})
	return buf.Bytes(), nil
}
