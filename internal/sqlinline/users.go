package sqlinline

// Column order shared by every statement that returns a user row:
// id, email, plan, credits_used, credits_limit, credits_reset_at,
// subscription_status, subscription_plan, subscription_started_at, created_at, updated_at

const QGetOrCreateUser = `--sql ab93c71e-e0c4-469c-8fcc-a2ec46354b7d
with inserted as (
    insert into users (id, email, plan, credits_used, credits_limit, created_at, updated_at)
    values ($1::text, nullif($2::text, ''), $3::text, 0, $4::int, now(), now())
    on conflict (id) do nothing
    returning id, email, plan, credits_used, credits_limit, credits_reset_at,
              subscription_status, subscription_plan, subscription_started_at, created_at, updated_at
)
select id, coalesce(email, ''), plan, credits_used, credits_limit, credits_reset_at,
       coalesce(subscription_status, ''), coalesce(subscription_plan, ''), subscription_started_at,
       created_at, updated_at, true as created
from inserted
union all
select id, coalesce(email, ''), plan, credits_used, credits_limit, credits_reset_at,
       coalesce(subscription_status, ''), coalesce(subscription_plan, ''), subscription_started_at,
       created_at, updated_at, false as created
from users
where id = $1::text
  and not exists (select 1 from inserted)
limit 1;
`

const QSelectUserByID = `--sql a282670b-c1a5-484f-b761-75df85446ca6
select id, coalesce(email, ''), plan, credits_used, credits_limit, credits_reset_at,
       coalesce(subscription_status, ''), coalesce(subscription_plan, ''), subscription_started_at,
       created_at, updated_at
from users
where id = $1::text
limit 1;
`

const QSelectUserByEmail = `--sql b36836f7-4e22-4b70-a6cf-76828684b4f8
select id, coalesce(email, ''), plan, credits_used, credits_limit, credits_reset_at,
       coalesce(subscription_status, ''), coalesce(subscription_plan, ''), subscription_started_at,
       created_at, updated_at
from users
where lower(email) = lower($1::text)
order by created_at
limit 1;
`

const QPromoteUserToPremium = `--sql e0312698-72c2-4779-bf85-ce8a2e0b19a9
update users
set plan = 'premium',
    credits_limit = -1,
    updated_at = now()
where id = $1::text
returning id, coalesce(email, ''), plan, credits_used, credits_limit, credits_reset_at,
          coalesce(subscription_status, ''), coalesce(subscription_plan, ''), subscription_started_at,
          created_at, updated_at;
`

// QConsumeCredit is the only statement that increments credits_used. The guard
// and the increment run as one row update, so concurrent callers serialize on
// the row lock and re-check the guard.
const QConsumeCredit = `--sql d3e16817-3178-494f-be72-e8bb8ea22118
update users
set credits_used = credits_used + 1,
    updated_at = now()
where id = $1::text
  and plan = 'free'
  and credits_used < credits_limit
returning plan, credits_used, credits_limit;
`

const QSelectUserCredits = `--sql 85354cd2-b317-46b0-8582-2ef79c62772f
select plan, credits_used, credits_limit
from users
where id = $1::text
limit 1;
`

const QResetUserCredits = `--sql e7373d74-d7f9-4a61-ab3d-4fc70975c680
update users
set credits_used = 0,
    credits_reset_at = now(),
    updated_at = now()
where id = $1::text
returning id, coalesce(email, ''), plan, credits_used, credits_limit, credits_reset_at,
          coalesce(subscription_status, ''), coalesce(subscription_plan, ''), subscription_started_at,
          created_at, updated_at;
`

const QUpsertPremiumUser = `--sql a61a8b9f-2775-4b16-ab43-454f612c311a
insert into users (id, email, plan, credits_used, credits_limit,
                   subscription_status, subscription_plan, subscription_started_at, created_at, updated_at)
values ($1::text, nullif($2::text, ''), 'premium', 0, -1, 'active', 'premium', now(), now(), now())
on conflict (id) do update set
    plan = 'premium',
    credits_limit = -1,
    email = coalesce(users.email, excluded.email),
    subscription_status = 'active',
    subscription_plan = 'premium',
    subscription_started_at = coalesce(users.subscription_started_at, excluded.subscription_started_at),
    updated_at = now()
returning id, coalesce(email, ''), plan, credits_used, credits_limit, credits_reset_at,
          coalesce(subscription_status, ''), coalesce(subscription_plan, ''), subscription_started_at,
          created_at, updated_at;
`
