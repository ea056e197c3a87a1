package storage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"homebudget/internal/models"
)

// DBTestSuite provides a test suite for database operations
type DBTestSuite struct {
	suite.Suite
	db   *DB
	user *models.User
}

// SetupTest runs before each test
func (suite *DBTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db

	user, err := db.CreateUser("Amine", "amine@example.com", "hash", decimal.RequireFromString("1000"))
	require.NoError(suite.T(), err, "failed to create test user")
	suite.user = user
}

// TearDownTest runs after each test
func (suite *DBTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *DBTestSuite) TestCreateUser() {
	assert.Equal(suite.T(), "amine@example.com", suite.user.Email)
	assert.Equal(suite.T(), "1000", suite.user.Balance.String())

	byEmail, err := suite.db.GetUserByEmail("amine@example.com")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID, byEmail.ID)
}

func (suite *DBTestSuite) TestDuplicateEmailRejected() {
	_, err := suite.db.CreateUser("Other", "amine@example.com", "hash", decimal.Zero)
	assert.Error(suite.T(), err, "unique email constraint should reject duplicates")
}

func (suite *DBTestSuite) TestUserCount() {
	count, err := suite.db.UserCount()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

func (suite *DBTestSuite) TestAddPurchaseDecrementsBalance() {
	balance, err := suite.db.AddPurchase(suite.user.ID, "Bread", decimal.RequireFromString("30.30"), "food", time.Now())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "969.70", balance.StringFixed(2))

	// The stored balance matches, not just the returned one.
	user, err := suite.db.GetUserByID(suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "969.70", user.Balance.StringFixed(2))

	balance, err = suite.db.AddPurchase(suite.user.ID, "Milk", decimal.RequireFromString("0.30"), "food", time.Now())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "969.40", balance.StringFixed(2))
}

func (suite *DBTestSuite) TestAddPurchaseUnknownUser() {
	_, err := suite.db.AddPurchase(9999, "Bread", decimal.RequireFromString("5"), "", time.Now())
	assert.Error(suite.T(), err)

	// Nothing was inserted for the unknown user.
	purchases, err := suite.db.ListPurchases(9999, nil, nil)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), purchases)
}

func (suite *DBTestSuite) TestPurchasesInRange() {
	dates := []time.Time{
		time.Date(2024, time.March, 9, 12, 0, 0, 0, time.Local),
		time.Date(2024, time.March, 10, 12, 0, 0, 0, time.Local),
		time.Date(2024, time.March, 16, 12, 0, 0, 0, time.Local),
		time.Date(2024, time.March, 17, 12, 0, 0, 0, time.Local),
	}
	for i, d := range dates {
		_, err := suite.db.AddPurchase(suite.user.ID, "Item", decimal.NewFromInt(int64(i+1)), "", d)
		require.NoError(suite.T(), err)
	}

	// Inclusive on both ends: the 2024-03-10 and 2024-03-16 purchases
	// are in, the neighbors are out.
	start := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, time.March, 16, 0, 0, 0, 0, time.Local)
	purchases, err := suite.db.PurchasesInRange(suite.user.ID, start, end)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), purchases, 2)

	// Ascending by date.
	assert.Equal(suite.T(), "2", purchases[0].Price.String())
	assert.Equal(suite.T(), "3", purchases[1].Price.String())
}

func (suite *DBTestSuite) TestPurchasesInRangeScopedToUser() {
	other, err := suite.db.CreateUser("Other", "other@example.com", "hash", decimal.Zero)
	require.NoError(suite.T(), err)

	d := time.Date(2024, time.March, 12, 12, 0, 0, 0, time.Local)
	_, err = suite.db.AddPurchase(suite.user.ID, "Mine", decimal.NewFromInt(10), "", d)
	require.NoError(suite.T(), err)
	_, err = suite.db.AddPurchase(other.ID, "Theirs", decimal.NewFromInt(20), "", d)
	require.NoError(suite.T(), err)

	start := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, time.March, 16, 0, 0, 0, 0, time.Local)
	purchases, err := suite.db.PurchasesInRange(suite.user.ID, start, end)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), purchases, 1)
	assert.Equal(suite.T(), "Mine", purchases[0].ItemName)
}

func (suite *DBTestSuite) TestListPurchasesNewestFirst() {
	base := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		_, err := suite.db.AddPurchase(suite.user.ID, "Item", decimal.NewFromInt(int64(i+1)), "", base.AddDate(0, 0, i))
		require.NoError(suite.T(), err)
	}

	purchases, err := suite.db.ListPurchases(suite.user.ID, nil, nil)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), purchases, 3)
	assert.Equal(suite.T(), "3", purchases[0].Price.String())
	assert.Equal(suite.T(), "1", purchases[2].Price.String())
}

func (suite *DBTestSuite) TestListPurchasesDateFilters() {
	base := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		_, err := suite.db.AddPurchase(suite.user.ID, "Item", decimal.NewFromInt(int64(i+1)), "", base.AddDate(0, 0, i))
		require.NoError(suite.T(), err)
	}

	start := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.Local)

	purchases, err := suite.db.ListPurchases(suite.user.ID, &start, &end)
	require.NoError(suite.T(), err)
	// 11th, 12th and 13th: start inclusive, end covers the whole day.
	assert.Len(suite.T(), purchases, 3)

	purchases, err = suite.db.ListPurchases(suite.user.ID, &start, nil)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), purchases, 4)

	purchases, err = suite.db.ListPurchases(suite.user.ID, nil, &end)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), purchases, 4)
}

func (suite *DBTestSuite) TestReportLogs() {
	start := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, time.March, 16, 0, 0, 0, 0, time.Local)

	err := suite.db.CreateReportLog(suite.user.ID, "weekly", decimal.RequireFromString("210.40"), start, end)
	require.NoError(suite.T(), err)
	err = suite.db.CreateReportLog(suite.user.ID, "monthly", decimal.Zero, start, end)
	require.NoError(suite.T(), err)

	logs, err := suite.db.ListReportLogs(suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), logs, 2)

	// Newest first.
	assert.Equal(suite.T(), "monthly", logs[0].ReportType)
	assert.Equal(suite.T(), "weekly", logs[1].ReportType)
	assert.Equal(suite.T(), "210.40", logs[1].Total.StringFixed(2))

	other, err := suite.db.ListReportLogs(9999)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), other)
}

func TestDBSuite(t *testing.T) {
	suite.Run(t, new(DBTestSuite))
}
