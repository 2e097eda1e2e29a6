package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	connStr := dbConnString()
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	basePath := filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations")

	var files []string
	if len(os.Args) > 1 {
		file, err := migrationFilePath(basePath, os.Args[1])
		if err != nil {
			log.Fatal(err)
		}
		files = []string{file}
	} else {
		files, err = allMigrationFiles(basePath)
		if err != nil {
			log.Fatal(err)
		}
	}

	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(basePath, file))
		if err != nil {
			log.Fatal(err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			log.Fatalf("Failed to execute %s: %v", file, err)
		}
		fmt.Printf("Applied %s\n", file)
	}
}

func allMigrationFiles(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

func migrationFilePath(basePath string, migrationName string) (string, error) {
	patternStr := fmt.Sprintf(`^.*%s\.sql`, regexp.QuoteMeta(migrationName))

	regex, err := regexp.Compile(patternStr)
	if err != nil {
		log.Fatalf("Invalid pattern: %v", err)
	}

	files, _ := os.ReadDir(basePath)
	for _, f := range files {
		if f.IsDir() {
			continue
		}

		if regex.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}

	return "", fmt.Errorf("migration file not found")
}

func dbConnString() string {
	dbName, user, password, host, port := dbConfig()
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}

func dbConfig() (dbName string, user string, password string, host string, port string) {
	dbName = os.Getenv("POSTGRES_DB")
	user = os.Getenv("POSTGRES_USER")
	password = os.Getenv("POSTGRES_PASSWORD")
	host = os.Getenv("POSTGRES_HOST")
	port = os.Getenv("POSTGRES_PORT")
	return
}
