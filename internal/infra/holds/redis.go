package holds

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Схема ключей (все ключи реестра под одним hash tag {<prefix>}, в кластере это один слот):
//   {<prefix>}:day:<stylist>:<date>  ZSET  member = id|session|start|end, score = expiresAt (unix ms)
//   {<prefix>}:hold:<id>             HASH  полные данные резерва, TTL = время жизни
//   {<prefix>}:session:<session>     STRING day-ключ и member текущего резерва сессии
//
// Скрипты обращаются только к ключам из KEYS. Ключи предыдущего резерва сессии
// читаются до запуска скрипта, скрипт сверяет запись сессии и при расхождении возвращает -1.

const maxScriptAttempts = 5

// acquireScript атомарно проверяет пересечения и сохраняет резерв.
// KEYS: day, hold, session, prevDay, prevHold.
// ARGV: now, expiresAt, ttlMs, member, startMin, endMin, sessionID, expectedSession, stylist, service, date, start, end, created.
// Возвращает 1 при успехе, 0 при конфликте, -1 если запись сессии изменилась.
var acquireScript = redis.NewScript(`
local current = redis.call("GET", KEYS[3]) or ""
if current ~= ARGV[8] then
  return -1
end

local now = tonumber(ARGV[1])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now)

local startMin = tonumber(ARGV[5])
local endMin = tonumber(ARGV[6])
local session = ARGV[7]

for _, m in ipairs(redis.call("ZRANGE", KEYS[1], 0, -1)) do
  local id, s, st, en = string.match(m, "^([^|]+)|([^|]*)|(%d+)|(%d+)$")
  if s ~= session and tonumber(st) < endMin and startMin < tonumber(en) then
    return 0
  end
end

if current ~= "" then
  local prevMember = string.match(current, "\n(.*)$")
  if prevMember and prevMember ~= ARGV[4] then
    redis.call("ZREM", KEYS[4], prevMember)
    redis.call("DEL", KEYS[5])
  end
end

redis.call("ZADD", KEYS[1], ARGV[2], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[3])

redis.call("HSET", KEYS[2],
  "session", session,
  "stylist", ARGV[9],
  "service", ARGV[10],
  "date", ARGV[11],
  "start", ARGV[12],
  "end", ARGV[13],
  "created", ARGV[14],
  "expires", ARGV[2],
  "day", KEYS[1],
  "member", ARGV[4])
redis.call("PEXPIRE", KEYS[2], ARGV[3])

redis.call("SET", KEYS[3], KEYS[1] .. "\n" .. ARGV[4], "PX", ARGV[3])
return 1
`)

// releaseScript снимает резерв. KEYS: hold, day, session. ARGV: member.
// Возвращает 1 если резерв снят, 0 если его уже нет, -1 если резерв не совпал с прочитанным.
var releaseScript = redis.NewScript(`
local fields = redis.call("HMGET", KEYS[1], "day", "member")
if not fields[1] then
  return 0
end
if fields[1] ~= KEYS[2] or fields[2] ~= ARGV[1] then
  return -1
end
redis.call("ZREM", KEYS[2], fields[2])
redis.call("DEL", KEYS[1])

local current = redis.call("GET", KEYS[3])
if current and current == fields[1] .. "\n" .. fields[2] then
  redis.call("DEL", KEYS[3])
end
return 1
`)

// RedisRegistry резервы в Redis. Истечение обеспечивается TTL ключей и score в ZSET.
type RedisRegistry struct {
	rdb    redis.UniversalClient
	prefix string
	clock  Clock
}

// NewRedisRegistry создает реестр поверх клиента go-redis
func NewRedisRegistry(rdb redis.UniversalClient, prefix string, clock Clock) *RedisRegistry {
	prefix = strings.Trim(strings.TrimSpace(prefix), "{}")
	if prefix == "" {
		prefix = "appt"
	}
	if clock == nil {
		clock = RealClock
	}
	return &RedisRegistry{rdb: rdb, prefix: "{" + prefix + "}", clock: clock}
}

func (r *RedisRegistry) dayKey(stylistID int64, date time.Time) string {
	return fmt.Sprintf("%s:day:%s", r.prefix, domain.DayKey(stylistID, date))
}

func (r *RedisRegistry) holdPrefix() string    { return r.prefix + ":hold:" }
func (r *RedisRegistry) sessionPrefix() string { return r.prefix + ":session:" }

func (r *RedisRegistry) Acquire(ctx context.Context, hold *domain.Hold) error {
	for attempt := 0; attempt < maxScriptAttempts; attempt++ {
		res, err := r.tryAcquire(ctx, hold)
		if err != nil {
			return err
		}
		switch res {
		case 1:
			return nil
		case 0:
			return ErrConflict
		}
	}
	return fmt.Errorf("%w: session %s is being updated concurrently", ErrConflict, hold.SessionID)
}

func (r *RedisRegistry) tryAcquire(ctx context.Context, hold *domain.Hold) (int64, error) {
	now := r.clock.Now()
	ttl := hold.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return 0, fmt.Errorf("%w: hold %s already expired", ErrInternal, hold.ID)
	}

	dayKey := r.dayKey(hold.StylistID, hold.Date)
	holdKey := r.holdPrefix() + hold.ID
	sessionKey := r.sessionPrefix() + hold.SessionID

	prev, err := r.rdb.Get(ctx, sessionKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: get session: %v", ErrInternal, err)
	}

	// без предыдущего резерва KEYS[4..5] дублируют текущие ключи, скрипт их не трогает
	prevDay, prevHold := dayKey, holdKey
	if day, holdID, ok := parseSessionRecord(prev); ok {
		prevDay, prevHold = day, r.holdPrefix()+holdID
	}

	keys := []string{dayKey, holdKey, sessionKey, prevDay, prevHold}
	args := []interface{}{
		now.UnixMilli(),
		hold.ExpiresAt.UnixMilli(),
		ttl.Milliseconds(),
		encodeMember(hold),
		hold.StartTime.Minutes(),
		hold.EndTime.Minutes(),
		hold.SessionID,
		prev,
		hold.StylistID,
		hold.ServiceID,
		hold.Date.Format(domain.DateFormat),
		hold.StartTime.String(),
		hold.EndTime.String(),
		hold.CreatedAt.UnixMilli(),
	}

	res, err := acquireScript.Run(ctx, r.rdb, keys, args...).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: acquire script: %v", ErrInternal, err)
	}
	return res, nil
}

func (r *RedisRegistry) Get(ctx context.Context, holdID string) (*domain.Hold, error) {
	fields, err := r.rdb.HGetAll(ctx, r.holdPrefix()+holdID).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: hgetall: %v", ErrInternal, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	hold, err := decodeHash(holdID, fields, r.clock.Now().Location())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if hold.IsExpired(r.clock.Now()) {
		return nil, ErrNotFound
	}
	return hold, nil
}

func (r *RedisRegistry) Release(ctx context.Context, holdID string) error {
	holdKey := r.holdPrefix() + holdID

	for attempt := 0; attempt < maxScriptAttempts; attempt++ {
		fields, err := r.rdb.HMGet(ctx, holdKey, "day", "member", "session").Result()
		if err != nil {
			return fmt.Errorf("%w: hmget: %v", ErrInternal, err)
		}
		day, _ := fields[0].(string)
		member, _ := fields[1].(string)
		session, _ := fields[2].(string)
		if day == "" {
			return nil
		}

		keys := []string{holdKey, day, r.sessionPrefix() + session}
		res, err := releaseScript.Run(ctx, r.rdb, keys, member).Int64()
		if err != nil {
			return fmt.Errorf("%w: release script: %v", ErrInternal, err)
		}
		if res >= 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: hold %s is being updated concurrently", ErrInternal, holdID)
}

func (r *RedisRegistry) ListActive(ctx context.Context, stylistID int64, date time.Time) ([]*domain.Hold, error) {
	now := r.clock.Now()
	members, err := r.rdb.ZRangeByScoreWithScores(ctx, r.dayKey(stylistID, date), &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(now.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: zrangebyscore: %v", ErrInternal, err)
	}

	result := make([]*domain.Hold, 0, len(members))
	for _, z := range members {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		hold, err := decodeMember(member)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		hold.StylistID = stylistID
		hold.Date = domain.DateOnly(date)
		hold.ExpiresAt = time.UnixMilli(int64(z.Score)).In(now.Location())
		result = append(result, hold)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.IsBefore(result[j].StartTime)
	})
	return result, nil
}

// Sweep для Redis ничего не делает: ключи истекают по TTL, а ZSET чистится при каждом Acquire
func (r *RedisRegistry) Sweep(context.Context) (int, error) {
	return 0, nil
}

func (r *RedisRegistry) Count(ctx context.Context) (int, error) {
	count := 0
	iter := r.rdb.Scan(ctx, 0, r.holdPrefix()+"*", 500).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("%w: scan: %v", ErrInternal, err)
	}
	return count, nil
}

// parseSessionRecord разбирает запись сессии "day\nmember" в day-ключ и ID резерва
func parseSessionRecord(record string) (dayKey, holdID string, ok bool) {
	day, member, found := strings.Cut(record, "\n")
	if !found || day == "" {
		return "", "", false
	}
	id, _, found := strings.Cut(member, "|")
	if !found || id == "" {
		return "", "", false
	}
	return day, id, true
}

func encodeMember(h *domain.Hold) string {
	return fmt.Sprintf("%s|%s|%d|%d", h.ID, h.SessionID, h.StartTime.Minutes(), h.EndTime.Minutes())
}

func decodeMember(member string) (*domain.Hold, error) {
	parts := strings.Split(member, "|")
	if len(parts) != 4 {
		return nil, fmt.Errorf("malformed hold member %q", member)
	}
	start, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("malformed hold start %q: %w", member, err)
	}
	end, err := strconv.Atoi(parts[3])
	if err != nil {
		return nil, fmt.Errorf("malformed hold end %q: %w", member, err)
	}
	return &domain.Hold{
		ID:        parts[0],
		SessionID: parts[1],
		StartTime: types.FromMinutes(start),
		EndTime:   types.FromMinutes(end),
	}, nil
}

func decodeHash(id string, f map[string]string, loc *time.Location) (*domain.Hold, error) {
	var errs []error
	parseInt := func(name string) int64 {
		v, err := strconv.ParseInt(f[name], 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("field %s: %w", name, err))
		}
		return v
	}

	stylistID := parseInt("stylist")
	serviceID := parseInt("service")
	created := parseInt("created")
	expires := parseInt("expires")

	date, err := time.ParseInLocation(domain.DateFormat, f["date"], loc)
	if err != nil {
		errs = append(errs, fmt.Errorf("field date: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("malformed hold %s: %w", id, err)
	}

	return &domain.Hold{
		ID:        id,
		SessionID: f["session"],
		StylistID: stylistID,
		ServiceID: serviceID,
		Date:      date,
		StartTime: types.TimeString(f["start"]),
		EndTime:   types.TimeString(f["end"]),
		CreatedAt: time.UnixMilli(created).In(loc),
		ExpiresAt: time.UnixMilli(expires).In(loc),
	}, nil
}
