// Package dialect names the SQL dialects tabula can render a schema for.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL database
//   - MySQL: MySQL/MariaDB database
//   - SQLite: SQLite database
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Sub-packages
//
//   - dialect/sqlschema: conversion of translated tables into atlas
//     schemas, and CREATE TABLE planning
package dialect
