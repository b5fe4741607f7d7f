package app

import (
	"database/sql"

	"go-payroll/internal/attendance"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/compensation"
	"go-payroll/internal/department"
	"go-payroll/internal/employee"
	"go-payroll/internal/employeesalary"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/middleware"
	"go-payroll/internal/payroll"
	"go-payroll/internal/rbac"
	"go-payroll/internal/shared/counter"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Registry wires repositories, services and handlers once so every binary
// shares the same construction order.
type Registry struct {
	RBACService rbac.Service

	DepartmentHandler     *department.Handler
	EmployeeHandler       *employee.Handler
	EmployeeSalaryHandler *employeesalary.Handler
	AttendanceHandler     *attendance.Handler
	CompensationHandler   *compensation.Handler
	PayrollHandler        *payroll.Handler
	RBACHandler           *rbac.Handler

	EmployeeSalaryService employeesalary.Service
	PayrollService        payroll.Service

	OutboxRepo kafka.OutboxRepository

	rdb *redis.Client
}

func NewRegistry(
	gormDB *gorm.DB,
	sqlDB *sql.DB,
	rdb *redis.Client,
	enforcer *casbin.Enforcer,
	logger *zap.Logger,
) *Registry {
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	counterRepo := counter.NewRepository(gormDB)
	audit := bootstrap.NewAuditLogger(logger)

	rbacRepo := rbac.NewRepository(gormDB)
	rbacService := rbac.NewService(rbacRepo, enforcer)

	departmentRepo := department.NewRepository(gormDB)
	departmentService := department.NewService(sqlDB, departmentRepo)

	employeeRepo := employee.NewRepository(gormDB)
	employeeService := employee.NewServiceWithOutbox(sqlDB, employeeRepo, counterRepo, outboxRepo, rdb, logger)

	salaryRepo := employeesalary.NewRepository(gormDB)
	salaryService := employeesalary.NewService(sqlDB, salaryRepo, logger)

	attendanceRepo := attendance.NewRepository(gormDB)
	attendanceService := attendance.NewService(sqlDB, attendanceRepo, logger)

	compensationRepo := compensation.NewRepository(gormDB)
	compensationService := compensation.NewService(sqlDB, compensationRepo, logger)

	payrollRepo := payroll.NewRepository(gormDB)
	payrollService := payroll.NewService(sqlDB, payrollRepo, attendanceRepo, outboxRepo, counterRepo, audit, logger)

	return &Registry{
		RBACService: rbacService,

		DepartmentHandler:     department.NewHandler(departmentService),
		EmployeeHandler:       employee.NewHandler(employeeService),
		EmployeeSalaryHandler: employeesalary.NewHandler(salaryService),
		AttendanceHandler:     attendance.NewHandler(attendanceService),
		CompensationHandler:   compensation.NewHandler(compensationService),
		PayrollHandler:        payroll.NewHandlerWithRedis(payrollService, rdb),
		RBACHandler:           rbac.NewHandler(rbacService),

		EmployeeSalaryService: salaryService,
		PayrollService:        payrollService,

		OutboxRepo: outboxRepo,

		rdb: rdb,
	}
}

// MountRoutes attaches every feature router under /api/v1.
func (r *Registry) MountRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	department.RegisterRoutes(v1, r.DepartmentHandler, r.RBACService)
	employee.RegisterRoutes(v1, r.EmployeeHandler, r.RBACService)
	employeesalary.RegisterRoutes(v1, r.EmployeeSalaryHandler, r.RBACService)
	attendance.RegisterRoutes(v1, r.AttendanceHandler, r.RBACService)
	compensation.RegisterRoutes(v1, r.CompensationHandler, r.RBACService)
	payroll.RegisterRoutes(v1, r.PayrollHandler, r.RBACService, middleware.Idempotency(r.rdb))
	rbac.RegisterRoutes(v1, r.RBACHandler, r.RBACService)
}
