package repository

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"testing"
	"time"

	"eshopper/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	// Same shape as the goose migrations, including the partial unique
	// indexes the cart upserts conflict against.
	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'user',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			slug VARCHAR(100) UNIQUE NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
			price_with_discount DOUBLE PRECISION NOT NULL DEFAULT 0,
			digital BOOLEAN NOT NULL DEFAULT FALSE,
			image_url VARCHAR(255) NOT NULL DEFAULT '',
			category VARCHAR(50) NOT NULL DEFAULT '',
			size VARCHAR(5) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			ordered BOOLEAN NOT NULL DEFAULT FALSE,
			transaction_id VARCHAR(100) UNIQUE NOT NULL,
			date_ordered TIMESTAMP NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_open_per_user
			ON orders (user_id) WHERE NOT ordered;

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			product_id UUID NOT NULL REFERENCES products (id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity > 0),
			ordered BOOLEAN NOT NULL DEFAULT FALSE,
			date_added TIMESTAMP NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_order_items_open_per_product_user
			ON order_items (product_id, user_id) WHERE NOT ordered;

		CREATE TABLE IF NOT EXISTS order_products (
			order_id UUID NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
			item_id UUID NOT NULL REFERENCES order_items (id) ON DELETE CASCADE,
			PRIMARY KEY (order_id, item_id)
		);
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func insertTestUser(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := testDB.Exec(`
		INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, 'x', 'user', NOW(), NOW())
	`, id, id.String()+"@example.com")
	require.NoError(t, err)
	return id
}

func insertTestProduct(t *testing.T, slug string, price, discount float64, size domain.Size, category string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := testDB.Exec(`
		INSERT INTO products (id, name, slug, price, price_with_discount, size, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`, id, slug, slug, price, discount, string(size), category)
	require.NoError(t, err)
	return id
}

func openLineQuantity(t *testing.T, userID, productID uuid.UUID) (int, bool) {
	t.Helper()
	var quantity int
	err := testDB.QueryRow(`
		SELECT oi.quantity
		FROM order_products op
		JOIN orders o ON o.id = op.order_id
		JOIN order_items oi ON oi.id = op.item_id
		WHERE o.user_id = $1 AND NOT o.ordered AND oi.product_id = $2
	`, userID, productID).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, false
	}
	require.NoError(t, err)
	return quantity, true
}

func TestAddProduct_AttachThenIncrement(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	userID := insertTestUser(t)
	productID := insertTestProduct(t, "add-attach-"+uuid.New().String(), 25, 0, domain.SizeM, "shirts")

	outcome, err := repo.AddProduct(ctx, userID, productID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAttached, outcome)

	quantity, ok := openLineQuantity(t, userID, productID)
	require.True(t, ok)
	assert.Equal(t, 1, quantity)

	outcome, err = repo.AddProduct(ctx, userID, productID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIncremented, outcome)

	quantity, _ = openLineQuantity(t, userID, productID)
	assert.Equal(t, 2, quantity)
}

func TestAddProduct_ConcurrentAddsConvergeOnOneOpenOrder(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	userID := insertTestUser(t)
	productID := insertTestProduct(t, "add-concurrent-"+uuid.New().String(), 25, 0, domain.SizeM, "shirts")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AddProduct(ctx, userID, productID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent add failed: %v", err)
	}

	var openOrders int
	require.NoError(t, testDB.QueryRow(`
		SELECT COUNT(*) FROM orders WHERE user_id = $1 AND NOT ordered
	`, userID).Scan(&openOrders))
	assert.Equal(t, 1, openOrders)

	var openItems int
	require.NoError(t, testDB.QueryRow(`
		SELECT COUNT(*) FROM order_items WHERE user_id = $1 AND product_id = $2 AND NOT ordered
	`, userID, productID).Scan(&openItems))
	assert.Equal(t, 1, openItems)

	quantity, ok := openLineQuantity(t, userID, productID)
	require.True(t, ok)
	assert.Equal(t, workers, quantity)
}

func TestRemoveProduct_RemovesWholeLine(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	userID := insertTestUser(t)
	productID := insertTestProduct(t, "remove-"+uuid.New().String(), 25, 0, domain.SizeM, "shirts")

	for i := 0; i < 3; i++ {
		_, err := repo.AddProduct(ctx, userID, productID)
		require.NoError(t, err)
	}

	require.NoError(t, repo.RemoveProduct(ctx, userID, productID))

	_, ok := openLineQuantity(t, userID, productID)
	assert.False(t, ok)

	// The pair is back in the absent state: the next add attaches fresh.
	outcome, err := repo.AddProduct(ctx, userID, productID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAttached, outcome)

	quantity, _ := openLineQuantity(t, userID, productID)
	assert.Equal(t, 1, quantity)
}

func TestRemoveProduct_NoOpenOrder(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	userID := insertTestUser(t)
	productID := insertTestProduct(t, "remove-noorder-"+uuid.New().String(), 25, 0, domain.SizeM, "shirts")

	err := repo.RemoveProduct(ctx, userID, productID)
	assert.ErrorIs(t, err, ErrNoOpenOrder)
}

func TestRemoveProduct_ItemNotInCart(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	userID := insertTestUser(t)
	inCart := insertTestProduct(t, "remove-incart-"+uuid.New().String(), 25, 0, domain.SizeM, "shirts")
	notInCart := insertTestProduct(t, "remove-notincart-"+uuid.New().String(), 10, 0, domain.SizeS, "hats")

	_, err := repo.AddProduct(ctx, userID, inCart)
	require.NoError(t, err)

	err = repo.RemoveProduct(ctx, userID, notInCart)
	assert.ErrorIs(t, err, ErrItemNotInCart)

	// The other line is untouched.
	quantity, ok := openLineQuantity(t, userID, inCart)
	require.True(t, ok)
	assert.Equal(t, 1, quantity)
}

func TestDecreaseProduct_DecrementsThenRemoves(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	userID := insertTestUser(t)
	productID := insertTestProduct(t, "decrease-"+uuid.New().String(), 25, 0, domain.SizeM, "shirts")

	_, err := repo.AddProduct(ctx, userID, productID)
	require.NoError(t, err)
	_, err = repo.AddProduct(ctx, userID, productID)
	require.NoError(t, err)

	removed, err := repo.DecreaseProduct(ctx, userID, productID)
	require.NoError(t, err)
	assert.False(t, removed)

	quantity, ok := openLineQuantity(t, userID, productID)
	require.True(t, ok)
	assert.Equal(t, 1, quantity)

	removed, err = repo.DecreaseProduct(ctx, userID, productID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok = openLineQuantity(t, userID, productID)
	assert.False(t, ok)
}

func TestDecreaseProduct_ItemNotInCart(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	userID := insertTestUser(t)
	inCart := insertTestProduct(t, "decrease-incart-"+uuid.New().String(), 25, 0, domain.SizeM, "shirts")
	notInCart := insertTestProduct(t, "decrease-notincart-"+uuid.New().String(), 10, 0, domain.SizeS, "hats")

	_, err := repo.AddProduct(ctx, userID, inCart)
	require.NoError(t, err)

	_, err = repo.DecreaseProduct(ctx, userID, notInCart)
	assert.ErrorIs(t, err, ErrItemNotInCart)
}

func TestOpenOrderLines_ReturnsPricedLines(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	userID := insertTestUser(t)
	shirtID := insertTestProduct(t, "lines-shirt-"+uuid.New().String(), 10, 0, domain.SizeM, "shirts")
	hatID := insertTestProduct(t, "lines-hat-"+uuid.New().String(), 30, 8, domain.SizeS, "hats")

	_, err := repo.AddProduct(ctx, userID, shirtID)
	require.NoError(t, err)
	_, err = repo.AddProduct(ctx, userID, shirtID)
	require.NoError(t, err)
	_, err = repo.AddProduct(ctx, userID, hatID)
	require.NoError(t, err)

	order, lines, err := repo.OpenOrderLines(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.False(t, order.Ordered)
	assert.NotEmpty(t, order.TransactionID)
	require.Len(t, lines, 2)

	byProduct := make(map[uuid.UUID]domain.CartLine)
	for _, line := range lines {
		byProduct[line.Product.ID] = line
	}

	shirtLine := byProduct[shirtID]
	require.NotNil(t, shirtLine.Item)
	assert.Equal(t, 2, shirtLine.Item.Quantity)
	assert.InDelta(t, 20.0, shirtLine.Total(), 1e-9)

	hatLine := byProduct[hatID]
	require.NotNil(t, hatLine.Item)
	assert.Equal(t, 1, hatLine.Item.Quantity)
	assert.InDelta(t, 8.0, hatLine.Total(), 1e-9)
}

func TestOpenOrderLines_NoOpenOrder(t *testing.T) {
	repo := NewOrderRepository(testDB)

	_, _, err := repo.OpenOrderLines(context.Background(), insertTestUser(t))
	assert.ErrorIs(t, err, ErrNoOpenOrder)
}
