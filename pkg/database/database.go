package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	DialectPostgres  = "postgres"
	DialectSQLServer = "sqlserver"
)

// DialectFor resolves the SQL dialect from the connection string scheme.
func DialectFor(connString string) (string, error) {
	switch {
	case strings.HasPrefix(connString, "postgres://"), strings.HasPrefix(connString, "postgresql://"):
		return DialectPostgres, nil
	case strings.HasPrefix(connString, "sqlserver://"):
		return DialectSQLServer, nil
	default:
		return "", fmt.Errorf("unsupported connection string scheme (want postgres:// or sqlserver://)")
	}
}

// ConnectSQL opens and pings a SQL connection, returning the handle together
// with the dialect the loader should speak.
func ConnectSQL(connString string) (*sql.DB, string, error) {
	dialect, err := DialectFor(connString)
	if err != nil {
		return nil, "", err
	}

	driver := "sqlserver"
	if dialect == DialectPostgres {
		driver = "pgx"
	}

	db, err := sql.Open(driver, connString)
	if err != nil {
		return nil, "", fmt.Errorf("error opening SQL database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("error connecting to SQL database (ping failed): %w", err)
	}

	slog.Info("connected to SQL store", slog.String("dialect", dialect))
	return db, dialect, nil
}

// ConnectMongo opens and pings a MongoDB client for the raw archive sink.
func ConnectMongo(connString string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connString))
	if err != nil {
		return nil, fmt.Errorf("error creating MongoDB client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)

		return nil, fmt.Errorf("error connecting to MongoDB (ping failed): %w", err)
	}

	slog.Info("connected to MongoDB")
	return client, nil
}
