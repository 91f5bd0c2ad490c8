package database_test

import (
	"bytes"
	"log/slog"

	"github.com/frahmantamala/store-management/internal/database"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Open", func() {
	It("keeps a single open connection", func() {
		db, err := database.Open(databaseConfig())
		Expect(err).NotTo(HaveOccurred())
		defer database.Close(db)

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Stats().MaxOpenConnections).To(Equal(1))
	})

	It("rejects an unknown driver", func() {
		cfg := databaseConfig()
		cfg.Driver = "oracle"
		_, err := database.Open(cfg)
		Expect(err).To(MatchError(ContainSubstring("unsupported database driver")))
	})

	It("traces statements through slog when query logging is on", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		cfg := databaseConfig()
		cfg.LogQueries = true
		db, err := database.OpenWithLogger(cfg, lg)
		Expect(err).NotTo(HaveOccurred())
		defer database.Close(db)

		Expect(db.Exec("SELECT 1").Error).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("component=gorm"))
		Expect(buf.String()).To(ContainSubstring("SELECT 1"))
	})

	It("stays quiet about statements by default", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewTextHandler(&buf, nil))

		db, err := database.OpenWithLogger(databaseConfig(), lg)
		Expect(err).NotTo(HaveOccurred())
		defer database.Close(db)

		Expect(db.Exec("SELECT 1").Error).To(Succeed())
		Expect(buf.String()).NotTo(ContainSubstring("SELECT 1"))
	})
})
