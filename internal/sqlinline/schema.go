package sqlinline

// SchemaStatements bootstraps the service tables. Each statement is idempotent.
var SchemaStatements = []string{
	QCreateUsersTable,
	QCreateUsersEmailIndex,
	QCreatePaymentsTable,
	QCreatePaymentsUserIndex,
	QCreateAppCredentialsTable,
}

const QCreateUsersTable = `--sql 3ca04e55-6022-478c-843e-210bae9a3548
create table if not exists users (
    id text primary key,
    email text,
    plan text not null default 'free' check (plan in ('free', 'premium')),
    credits_used integer not null default 0 check (credits_used >= 0),
    credits_limit integer not null default 3 check (credits_limit >= -1),
    credits_reset_at timestamptz,
    subscription_status text,
    subscription_plan text,
    subscription_started_at timestamptz,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`

const QCreateUsersEmailIndex = `--sql 37806fe7-975b-4b86-afe6-dcdb2af27ebe
create index if not exists users_email_lower_idx on users (lower(email));
`

const QCreatePaymentsTable = `--sql 20ac2715-1b56-4e09-a833-5680af929447
create table if not exists payments (
    id uuid primary key,
    order_id text not null unique,
    user_id text not null,
    user_email text,
    plan text not null default 'premium',
    amount numeric(12, 2) not null,
    currency text not null default 'ILS',
    status text not null check (status in ('pending', 'completed')),
    payment_url text,
    gateway_transaction_id text,
    gateway_document_number text,
    webhook_data jsonb,
    created_at timestamptz not null default now(),
    completed_at timestamptz
);
`

const QCreatePaymentsUserIndex = `--sql 70bf46cd-062f-4916-9585-3e86d30d8002
create index if not exists payments_user_id_idx on payments (user_id);
`

const QCreateAppCredentialsTable = `--sql 34c05e29-2fb2-4985-aa4c-ee26954d7ae5
create table if not exists app_credentials (
    provider text primary key,
    token text not null,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`
