// Package repository handles all interactions with the database.
//
// Queries are built with goqu against the postgres dialect and
// executed on the shared pgx pool. List queries run through the query
// package so every collection endpoint shares the same filter, sort,
// projection and pagination behavior. Rows are collected with pgx's
// struct scanning, which tolerates sparse projections.
package repository

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

var builder = goqu.Dialect("postgres")
