package config

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

// ConnectDB opens the configured database using Gorm. The driver is picked
// from DB_DRIVER so deployments can run on postgres, mysql or sqlserver.
func ConnectDB() (*gorm.DB, error) {
	dialector, err := buildDialector()
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, &gorm.Config{})
}

func buildDialector() (gorm.Dialector, error) {
	switch DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			DBHost, DBUser, DBPassword, DBName, DBPort)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			DBUser, DBPassword, DBHost, DBPort, DBName)
		return mysql.Open(dsn), nil
	case "mssql", "sqlserver":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			DBUser, DBPassword, DBHost, DBPort, DBName)
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB driver: %s", DBDriver)
	}
}
