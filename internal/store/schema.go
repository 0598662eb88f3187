package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Konovalexx/hh-parser-2/internal/config"
	"github.com/Konovalexx/hh-parser-2/internal/db"
)

const createCompanyTable = `
	CREATE TABLE company (
		company_id SERIAL PRIMARY KEY,
		employer   TEXT NOT NULL
	)`

const createVacancyTable = `
	CREATE TABLE vacancy (
		vacancy_id   SERIAL PRIMARY KEY,
		company_id   INT NOT NULL REFERENCES company (company_id),
		name_vacancy TEXT NOT NULL,
		publish_date DATE,
		url          TEXT,
		salary_from  INTEGER NOT NULL DEFAULT 0,
		salary_to    INTEGER NOT NULL DEFAULT 0
	)`

// Reset drops the database target names, creates it again through admin and
// lays down the company and vacancy tables. Everything from the previous run
// is lost.
func Reset(ctx context.Context, admin, target config.Postgres) error {
	if err := RecreateDatabase(ctx, admin, target.DBName); err != nil {
		return err
	}
	return CreateTables(ctx, target)
}

// RecreateDatabase drops name if it exists, terminating open sessions, and
// creates it empty.
func RecreateDatabase(ctx context.Context, admin config.Postgres, name string) error {
	conn, err := db.Connect(ctx, admin)
	if err != nil {
		return err
	}
	defer conn.Close(context.WithoutCancel(ctx))

	ident := pgx.Identifier{name}.Sanitize()
	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+ident+" WITH (FORCE)"); err != nil {
		return fmt.Errorf("drop database %s: %w", name, err)
	}
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

// CreateTables creates the company and vacancy tables in one transaction.
func CreateTables(ctx context.Context, target config.Postgres) error {
	conn, err := db.Connect(ctx, target)
	if err != nil {
		return err
	}
	defer conn.Close(context.WithoutCancel(ctx))

	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createCompanyTable); err != nil {
			return fmt.Errorf("create table company: %w", err)
		}
		if _, err := tx.Exec(ctx, createVacancyTable); err != nil {
			return fmt.Errorf("create table vacancy: %w", err)
		}
		return nil
	})
	return err
}
