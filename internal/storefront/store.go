package storefront

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/event"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/gate"
)

var (
	// ErrNotFound は対象のレコードが存在しないことを表す。
	ErrNotFound = errors.New("レコードが見つかりません")
	// ErrDuplicateEmail はメールアドレスが登録済みであることを表す。
	ErrDuplicateEmail = errors.New("メールアドレスは既に登録されています")
	// ErrInsufficientStock は在庫が不足していることを表す。
	ErrInsufficientStock = errors.New("在庫が不足しています")
	// ErrInvalidTransition は許可されていない注文ステータスの遷移を表す。
	ErrInvalidTransition = errors.New("注文ステータスを変更できません")
	// ErrAmountOverflow は注文の数量または金額が表現できる上限を超えることを表す。
	ErrAmountOverflow = errors.New("注文の数量または金額が上限を超えています")
)

// timeLayout はDBに保存する日時の書式。文字列比較で時系列順に並ぶよう固定長にする。
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// OrderStatus は注文のステータス。
type OrderStatus string

const (
	// OrderStatusPending はチェックアウト直後の未確定状態。
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed は購入者が注文を確定した状態。
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusShipped は発送済みの状態。
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered は配達完了の状態。
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled はキャンセルされた状態。
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions は注文ステータスの許可された遷移。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

// CanTransition はfromからtoへの遷移が許可されているかを返す。
func (from OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// User は会員ユーザー。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         gate.Role
	CreatedAt    string
}

// Product は販売商品。価格は最小通貨単位（VND）で保持する。
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       int64
	Stock       int64
	ImageURL    string
	CreatedAt   string
	UpdatedAt   string
}

// ProductFilter は商品一覧の絞り込み条件。
type ProductFilter struct {
	// Category が空でなければカテゴリで完全一致検索する。
	Category string
	// Query が空でなければ商品名の部分一致で検索する。
	Query string
	// Limit は最大件数。0以下の場合は制限しない。
	Limit int
}

// Shipping は配送先情報。
type Shipping struct {
	Name    string
	Phone   string
	Address string
}

// OrderLine はチェックアウト時に指定される購入明細。
type OrderLine struct {
	ProductID string
	Quantity  int64
}

// OrderItem は注文明細。価格と商品名は注文時点の値を保持する。
type OrderItem struct {
	ProductID   string
	ProductName string
	UnitPrice   int64
	Quantity    int64
}

// Order は注文。
type Order struct {
	ID        string
	UserID    string
	Status    OrderStatus
	Total     int64
	Shipping  Shipping
	Items     []OrderItem
	CreatedAt string
	UpdatedAt string
}

// DashboardStats は管理ダッシュボードの集計値。
type DashboardStats struct {
	Users          int64
	Products       int64
	Orders         int64
	OrdersByStatus map[OrderStatus]int64
	Revenue        int64
	LowStock       []Product
}

// Store はストアフロントの永続化層。
type Store struct {
	db *sql.DB
}

// NewStore はSQLite接続からStoreを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateUser はユーザーを登録する。メールアドレスが重複する場合はErrDuplicateEmailを返す。
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = gate.RoleUser
	}
	u.CreatedAt = now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, string(u.Role), u.CreatedAt)
	if isUniqueViolation(err) {
		return User{}, ErrDuplicateEmail
	}
	if err != nil {
		return User{}, fmt.Errorf("ユーザーの登録に失敗: %w", err)
	}
	return u, nil
}

const userColumns = `id, email, name, password_hash, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return User{}, err
	}
	u.Role = gate.Role(role)
	return u, nil
}

// GetUserByEmail はメールアドレスでユーザーを取得する。
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return u, nil
}

// GetUserByID はIDでユーザーを取得する。
func (s *Store) GetUserByID(ctx context.Context, id string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return u, nil
}

// ListUsers は登録日時の新しい順にユーザーを返す。
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, email`)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ユーザー行の読み取りに失敗: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserRole はユーザーのロールを変更し、変更前のロールを返す。
func (s *Store) UpdateUserRole(ctx context.Context, id string, role gate.Role) (gate.Role, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var prev string
	err = tx.QueryRowContext(ctx, `SELECT role FROM users WHERE id = ?`, id).Scan(&prev)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id); err != nil {
		return "", fmt.Errorf("ロールの更新に失敗: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("コミットに失敗: %w", err)
	}
	return gate.Role(prev), nil
}

const productColumns = `id, name, description, category, price, stock, image_url, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListProducts は条件に一致する商品を登録日時の新しい順に返す。
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1 = 1`
	var args []any
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Query != "" {
		query += ` AND name LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(f.Query)+"%")
	}
	query += ` ORDER BY created_at DESC, name`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("商品一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("商品行の読み取りに失敗: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ListCategories は商品に設定されているカテゴリを名前順に返す。
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("カテゴリ行の読み取りに失敗: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetProduct はIDで商品を取得する。
func (s *Store) GetProduct(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("商品の取得に失敗: %w", err)
	}
	return p, nil
}

// CreateProduct は商品を登録する。
func (s *Store) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Category, p.Price, p.Stock, p.ImageURL, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return Product{}, fmt.Errorf("商品の登録に失敗: %w", err)
	}
	return p, nil
}

// UpdateProduct は商品情報を更新する。
func (s *Store) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	p.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, category = ?, price = ?, stock = ?, image_url = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, p.Category, p.Price, p.Stock, p.ImageURL, p.UpdatedAt, p.ID)
	if err != nil {
		return Product{}, fmt.Errorf("商品の更新に失敗: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Product{}, ErrNotFound
	}
	return s.GetProduct(ctx, p.ID)
}

// DeleteProduct は商品を削除する。既存の注文明細は注文時点の商品名と価格を保持しているため影響しない。
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("商品の削除に失敗: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PlaceOrder は在庫を引き当てて注文を作成する。
// 同じ商品が複数行ある場合は数量を合算する。金額は現在の商品価格から計算する。
func (s *Store) PlaceOrder(ctx context.Context, userID string, lines []OrderLine, shipping Shipping) (Order, error) {
	merged := make(map[string]int64, len(lines))
	var order []string
	for _, l := range lines {
		if l.Quantity <= 0 {
			return Order{}, fmt.Errorf("数量が不正です: product_id=%s", l.ProductID)
		}
		if _, ok := merged[l.ProductID]; !ok {
			order = append(order, l.ProductID)
		}
		if merged[l.ProductID] > math.MaxInt64-l.Quantity {
			return Order{}, fmt.Errorf("商品 %s: %w", l.ProductID, ErrAmountOverflow)
		}
		merged[l.ProductID] += l.Quantity
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	o := Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    OrderStatusPending,
		Shipping:  shipping,
		CreatedAt: now(),
	}
	o.UpdatedAt = o.CreatedAt

	for _, productID := range order {
		qty := merged[productID]
		var name string
		var price, stock int64
		err := tx.QueryRowContext(ctx, `SELECT name, price, stock FROM products WHERE id = ?`, productID).Scan(&name, &price, &stock)
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, fmt.Errorf("商品 %s: %w", productID, ErrNotFound)
		}
		if err != nil {
			return Order{}, fmt.Errorf("商品の取得に失敗: %w", err)
		}
		if stock < qty {
			return Order{}, fmt.Errorf("商品 %s: %w", name, ErrInsufficientStock)
		}
		if price > 0 && qty > (math.MaxInt64-o.Total)/price {
			return Order{}, fmt.Errorf("商品 %s: %w", name, ErrAmountOverflow)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ?`, qty, o.CreatedAt, productID); err != nil {
			return Order{}, fmt.Errorf("在庫の更新に失敗: %w", err)
		}
		o.Items = append(o.Items, OrderItem{ProductID: productID, ProductName: name, UnitPrice: price, Quantity: qty})
		o.Total += price * qty
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, status, total, shipping_name, shipping_phone, shipping_address, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, string(o.Status), o.Total, shipping.Name, shipping.Phone, shipping.Address, o.CreatedAt, o.UpdatedAt); err != nil {
		return Order{}, fmt.Errorf("注文の登録に失敗: %w", err)
	}
	for _, item := range o.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity) VALUES (?, ?, ?, ?, ?)`,
			o.ID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity); err != nil {
			return Order{}, fmt.Errorf("注文明細の登録に失敗: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("コミットに失敗: %w", err)
	}
	return o, nil
}

const orderColumns = `id, user_id, status, total, shipping_name, shipping_phone, shipping_address, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &status, &o.Total, &o.Shipping.Name, &o.Shipping.Phone, &o.Shipping.Address, &o.CreatedAt, &o.UpdatedAt)
	o.Status = OrderStatus(status)
	return o, err
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getOrder(ctx context.Context, q queryer, id string) (Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("注文の取得に失敗: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT product_id, product_name, unit_price, quantity FROM order_items WHERE order_id = ? ORDER BY rowid`, id)
	if err != nil {
		return Order{}, fmt.Errorf("注文明細の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity); err != nil {
			return Order{}, fmt.Errorf("注文明細行の読み取りに失敗: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

// GetOrder は明細付きで注文を取得する。
func (s *Store) GetOrder(ctx context.Context, id string) (Order, error) {
	return getOrder(ctx, s.db, id)
}

// ListOrders は注文を新しい順に返す。userIDまたはstatusが空でなければ絞り込む。明細は含まない。
func (s *Store) ListOrders(ctx context.Context, userID string, status OrderStatus) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1 = 1`
	var args []any
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("注文一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("注文行の読み取りに失敗: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// TransitionOrder は注文ステータスをtoに変更し、変更前のステータスを返す。
// ownerIDが空でない場合は注文の所有者であることも確認し、異なればErrNotFoundを返す。
// キャンセル時は引き当てた在庫を戻す。
func (s *Store) TransitionOrder(ctx context.Context, id, ownerID string, to OrderStatus) (OrderStatus, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	o, err := getOrder(ctx, tx, id)
	if err != nil {
		return "", err
	}
	if ownerID != "" && o.UserID != ownerID {
		return "", ErrNotFound
	}
	if !o.Status.CanTransition(to) {
		return o.Status, fmt.Errorf("%s から %s: %w", o.Status, to, ErrInvalidTransition)
	}

	ts := now()
	if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, string(to), ts, id); err != nil {
		return "", fmt.Errorf("注文ステータスの更新に失敗: %w", err)
	}
	if to == OrderStatusCancelled {
		for _, item := range o.Items {
			// 削除済み商品の在庫は戻さない
			if _, err := tx.ExecContext(ctx, `UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?`, item.Quantity, ts, item.ProductID); err != nil {
				return "", fmt.Errorf("在庫の戻しに失敗: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("コミットに失敗: %w", err)
	}
	return o.Status, nil
}

// lowStockThreshold はダッシュボードで在庫僅少として表示する閾値。
const lowStockThreshold = 5

// Dashboard は管理ダッシュボードの集計値を返す。
// 売上は確定以降（confirmed・shipped・delivered）の注文合計とする。
func (s *Store) Dashboard(ctx context.Context) (DashboardStats, error) {
	stats := DashboardStats{OrdersByStatus: make(map[OrderStatus]int64)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.Users); err != nil {
		return DashboardStats{}, fmt.Errorf("ユーザー数の集計に失敗: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&stats.Products); err != nil {
		return DashboardStats{}, fmt.Errorf("商品数の集計に失敗: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*), COALESCE(SUM(total), 0) FROM orders GROUP BY status`)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("注文の集計に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var status string
		var count, total int64
		if err := rows.Scan(&status, &count, &total); err != nil {
			return DashboardStats{}, fmt.Errorf("注文集計行の読み取りに失敗: %w", err)
		}
		st := OrderStatus(status)
		stats.OrdersByStatus[st] = count
		stats.Orders += count
		switch st {
		case OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered:
			stats.Revenue += total
		}
	}
	if err := rows.Err(); err != nil {
		return DashboardStats{}, err
	}

	lowRows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE stock < ? ORDER BY stock, name`, lowStockThreshold)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("在庫僅少商品の取得に失敗: %w", err)
	}
	defer func() { _ = lowRows.Close() }()
	for lowRows.Next() {
		p, err := scanProduct(lowRows)
		if err != nil {
			return DashboardStats{}, fmt.Errorf("商品行の読み取りに失敗: %w", err)
		}
		stats.LowStock = append(stats.LowStock, p)
	}
	return stats, lowRows.Err()
}

// RecordEvent はAggregateごとに連番のバージョンを採番してイベントを記録する。
func (s *Store) RecordEvent(ctx context.Context, aggregateID string, aggregateType event.AggregateType, eventType event.Type, data any) (*event.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var version int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) + 1 FROM events WHERE aggregate_id = ?`, aggregateID).Scan(&version); err != nil {
		return nil, fmt.Errorf("イベントバージョンの取得に失敗: %w", err)
	}

	ev, err := event.New(aggregateID, aggregateType, eventType, version, data)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (id, aggregate_id, aggregate_type, event_type, data, version, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.AggregateID, string(ev.AggregateType), string(ev.EventType), string(ev.Data), ev.Version,
		ev.CreatedAt.Format(timeLayout)); err != nil {
		return nil, fmt.Errorf("イベントの記録に失敗: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return ev, nil
}

// ListEvents はイベントを新しい順に最大limit件返す。aggregateIDが空でなければ絞り込む。
func (s *Store) ListEvents(ctx context.Context, aggregateID string, limit int) ([]event.Event, error) {
	query := `SELECT id, aggregate_id, aggregate_type, event_type, data, version, created_at FROM events`
	var args []any
	if aggregateID != "" {
		query += ` WHERE aggregate_id = ?`
		args = append(args, aggregateID)
	}
	query += ` ORDER BY created_at DESC, version DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []event.Event{}
	for rows.Next() {
		var ev event.Event
		var aggType, evType, data, createdAt string
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &aggType, &evType, &data, &ev.Version, &createdAt); err != nil {
			return nil, fmt.Errorf("イベント行の読み取りに失敗: %w", err)
		}
		ev.AggregateType = event.AggregateType(aggType)
		ev.EventType = event.Type(evType)
		ev.Data = []byte(data)
		ev.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("イベント日時のパースに失敗: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
